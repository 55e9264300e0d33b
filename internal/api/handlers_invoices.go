package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/invoicegest/internal/export"
	"github.com/dgallion1/invoicegest/internal/invoice"
)

type invoiceRecord struct {
	JobID    string                       `json:"job_id"`
	DocID    string                       `json:"doc_id"`
	Filename string                       `json:"filename"`
	Data     invoice.ExtractedInvoiceData `json:"data"`
	Band     invoice.Band                 `json:"band"`
}

// handleListInvoices lists the records of all successfully extracted jobs.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	completed := s.orchestrator.Completed()
	out := make([]invoiceRecord, 0, len(completed))
	for _, snap := range completed {
		out = append(out, invoiceRecord{
			JobID:    snap.ID,
			DocID:    snap.DocID,
			Filename: snap.Filename,
			Data:     snap.Result.Data,
			Band:     snap.Result.Band(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": out, "count": len(out)})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	completed := s.orchestrator.Completed()
	records := make([]export.Record, 0, len(completed))
	for _, snap := range completed {
		records = append(records, export.Record{
			Filename: snap.Filename,
			DocID:    snap.DocID,
			Data:     snap.Result.Data,
		})
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, records); err != nil {
		s.log.Error("export failed", "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoices-%s.xlsx"`, start.UTC().Format("20060102-150405")))
	w.Write(buf.Bytes())

	s.log.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"latency":     s.stats.Snapshot(),
	})
}
