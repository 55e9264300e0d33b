package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/invoicegest/internal/invoice"
	"github.com/dgallion1/invoicegest/internal/textlayer"
)

// resultResponse is the wire shape of an extraction result. It adds the
// confidence band so clients do not reimplement the thresholds.
type resultResponse struct {
	State   invoice.State                `json:"state"`
	Data    invoice.ExtractedInvoiceData `json:"data"`
	Fields  []invoice.FieldResult        `json:"fields"`
	Band    invoice.Band                 `json:"band"`
	Message string                       `json:"message"`
	Error   string                       `json:"error,omitempty"`
}

func newResultResponse(res invoice.Result) resultResponse {
	fields := res.Fields
	if fields == nil {
		fields = []invoice.FieldResult{}
	}
	out := resultResponse{
		State:   res.State,
		Data:    res.Data,
		Fields:  fields,
		Band:    res.Band(),
		Message: res.Band().Message(),
	}
	if res.Failure != nil {
		out.Error = res.Failure.Error()
	}
	return out
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		jsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	filename, data, err := s.readUpload(fhs[0])
	if err != nil {
		writeUploadError(w, err)
		return
	}

	res := s.orchestrator.Worker().ExtractDocument(r.Context(), filename, data)
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

type extractTextRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req extractTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == nil {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	res := s.orchestrator.Worker().ExtractText(*req.Text)
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

// readUpload validates and reads one multipart file.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, error) {
	filename := sanitizeFilename(fh.Filename)
	if !textlayer.IsSupportedExtension(filename) {
		return filename, nil, &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}

	f, err := fh.Open()
	if err != nil {
		return filename, nil, &uploadError{"failed to open file", http.StatusInternalServerError}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, &uploadError{"failed to read file", http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}
	return filename, data, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, ue.code)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
