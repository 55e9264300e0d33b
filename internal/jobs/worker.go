package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/invoicegest/internal/invoice"
	"github.com/dgallion1/invoicegest/internal/stats"
	"github.com/dgallion1/invoicegest/internal/textlayer"
)

// Worker reads a document's text layer and runs the extraction engine on it.
// It is stateless between documents and shared by all pool goroutines.
type Worker struct {
	engine  *invoice.Engine
	stats   *stats.Pipeline
	log     *slog.Logger
	opts    textlayer.Options
	timeout time.Duration
}

func NewWorker(engine *invoice.Engine, st *stats.Pipeline, opts textlayer.Options, timeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		engine:  engine,
		stats:   st,
		log:     log,
		opts:    opts,
		timeout: timeout,
	}
}

// Process runs the read and extract phases for a queued job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	job.SetStatus(StatusReading, "reading")
	text, readErr := w.readTextLayer(ctx, job.Filename, job.FileData())
	if readErr != nil {
		log.Warn("text layer unavailable", "filename", job.Filename, "error", readErr)
	}

	job.SetStatus(StatusExtracting, "extracting")
	res := w.extract(text, readErr)
	job.Finish(res)

	log.Info("extraction complete",
		"state", res.State,
		"confidence", res.Data.Confidence,
		"fields", len(res.Fields),
	)
}

// ExtractDocument reads and extracts one document synchronously.
func (w *Worker) ExtractDocument(ctx context.Context, filename string, data []byte) invoice.Result {
	text, err := w.readTextLayer(ctx, filename, data)
	if err != nil {
		w.log.Warn("text layer unavailable", "filename", filename, "error", err)
	}
	return w.extract(text, err)
}

// ExtractText runs the engine over text that is already extracted.
func (w *Worker) ExtractText(text string) invoice.Result {
	return w.extract(text, nil)
}

func (w *Worker) readTextLayer(ctx context.Context, filename string, data []byte) (string, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	start := time.Now()
	defer w.stats.TextLayer.Since(start)
	return textlayer.Read(ctx, bytes.NewReader(data), filename, w.opts)
}

func (w *Worker) extract(text string, readErr error) invoice.Result {
	start := time.Now()
	defer w.stats.Extraction.Since(start)
	return w.engine.ExtractTextLayer(text, readErr)
}
