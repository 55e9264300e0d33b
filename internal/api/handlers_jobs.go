package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/invoicegest/internal/jobs"
)

type submission struct {
	Filename string      `json:"filename"`
	JobID    string      `json:"job_id,omitempty"`
	DocID    string      `json:"doc_id,omitempty"`
	Status   jobs.Status `json:"status,omitempty"`
	PollURL  string      `json:"poll_url,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func (s *Server) submit(filename string, data []byte) submission {
	job := jobs.NewJob(filename, data)
	if err := s.orchestrator.Submit(job); err != nil {
		return submission{Filename: filename, Error: err.Error()}
	}
	return submission{
		Filename: filename,
		JobID:    job.ID,
		DocID:    job.DocID,
		Status:   jobs.StatusQueued,
		PollURL:  fmt.Sprintf("/api/jobs/%s", job.ID),
	}
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

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

	sub := s.submit(filename, data)
	if sub.Error != "" {
		jsonError(w, sub.Error, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, sub)
}

func (s *Server) handleBatchSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]submission, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, submission{Filename: filename, Error: err.Error()})
			continue
		}
		results = append(results, s.submit(filename, data))
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

type jobResponse struct {
	jobs.Snapshot
	Result *resultResponse `json:"result,omitempty"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	resp := jobResponse{Snapshot: snap}
	if snap.Result != nil {
		rr := newResultResponse(*snap.Result)
		resp.Result = &rr
	}
	writeJSON(w, http.StatusOK, resp)
}
