package invoice

import (
	"fmt"
	"log/slog"
)

const (
	unreadableMessage = "Could not read any text from this document. Please enter the invoice details manually."
	internalMessage   = "Invoice parsing failed unexpectedly. Please enter the invoice details manually."
)

// Engine runs the extraction pipeline. It holds no per-document state and is
// safe for concurrent use.
type Engine struct {
	log        *slog.Logger
	extractors []Extractor
}

// NewEngine returns an engine over the default rule tables.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{log: log, extractors: defaultExtractors}
}

var defaultEngine = NewEngine(nil)

// Extract runs the default engine over text.
func Extract(text string) Result { return defaultEngine.Extract(text) }

// Extract runs the pipeline over a finished text layer.
func (e *Engine) Extract(text string) Result {
	return e.run(text, nil)
}

// ExtractTextLayer runs the pipeline over the output of a text-layer reader.
// A non-nil readErr is handled exactly like empty text.
func (e *Engine) ExtractTextLayer(text string, readErr error) Result {
	return e.run(text, readErr)
}

func (e *Engine) run(text string, readErr error) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("extractor panicked", "panic", r)
			res = failed(fmt.Errorf("%w: %v", ErrInternal, r), internalMessage)
		}
	}()

	if readErr != nil {
		e.log.Warn("text layer unavailable", "error", readErr)
		return failed(fmt.Errorf("%w: %w", ErrUnreadableDocument, readErr), unreadableMessage)
	}
	rt, ok := Normalize(text)
	if !ok {
		return failed(ErrUnreadableDocument, unreadableMessage)
	}

	primary := make([]FieldResult, len(e.extractors))
	for i, x := range e.extractors {
		primary[i] = x.Extract(rt)
	}
	fields := scanFallbacks(rt, e.extractors, primary)

	var data ExtractedInvoiceData
	found := make([]FieldResult, 0, len(fields))
	for _, f := range fields {
		if !f.Found() {
			continue
		}
		data.set(f.Field, f.Value)
		found = append(found, f)
		e.log.Debug("field extracted", "field", f.Field, "rule", f.Rule, "source", f.Source)
	}
	data.Confidence = Confidence(fields)

	return Result{State: StateDone, Data: data, Fields: found}
}

func failed(err error, diagnostic string) Result {
	return Result{
		State:   StateFailed,
		Data:    ExtractedInvoiceData{Description: diagnostic},
		Failure: err,
	}
}
