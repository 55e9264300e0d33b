// Package cli implements the invoicegest command line: batch extraction of
// local files and extraction of text piped on stdin.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/invoicegest/internal/export"
	"github.com/dgallion1/invoicegest/internal/invoice"
	"github.com/dgallion1/invoicegest/internal/jobs"
	"github.com/dgallion1/invoicegest/internal/stats"
	"github.com/dgallion1/invoicegest/internal/textlayer"
)

type rootOptions struct {
	logLevel  string
	pdftotext bool
	timeout   time.Duration
}

// NewRootCommand builds the command tree. Output goes to the command's out
// writer so tests can capture it.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "invoicegest",
		Short:         "Extract structured invoice fields from documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs the Go reader cannot handle")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-document text layer timeout")

	cmd.AddCommand(newExtractCommand(opts), newTextCommand(opts))
	return cmd
}

func (o *rootOptions) worker(stderr io.Writer) (*jobs.Worker, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", o.logLevel, err)
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return jobs.NewWorker(
		invoice.NewEngine(log),
		stats.NewPipeline(time.Hour),
		textlayer.Options{FallbackPdftotext: o.pdftotext},
		o.timeout,
		log,
	), nil
}

// fileResult pairs an input path with its extraction result.
type fileResult struct {
	File  string                       `json:"file"`
	State invoice.State                `json:"state"`
	Data  invoice.ExtractedInvoiceData `json:"data"`
	Band  invoice.Band                 `json:"band"`
	Error string                       `json:"error,omitempty"`
}

func newFileResult(file string, res invoice.Result) fileResult {
	fr := fileResult{
		File:  file,
		State: res.State,
		Data:  res.Data,
		Band:  res.Band(),
	}
	if res.Failure != nil {
		fr.Error = res.Failure.Error()
	}
	return fr
}

func newExtractCommand(root *rootOptions) *cobra.Command {
	var (
		concurrency int
		format      string
		xlsxPath    string
	)
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Extract invoice fields from PDF, DOCX, HTML, Markdown or text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unknown --format %q", format)
			}
			w, err := root.worker(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			results, err := extractFiles(cmd.Context(), w, args, concurrency)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := writeWorkbook(xlsxPath, results); err != nil {
					return err
				}
			}
			if format == "table" {
				return writeTable(cmd.OutOrStdout(), results)
			}
			return writeJSON(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "documents processed in parallel")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, table)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the results to this XLSX workbook")
	return cmd
}

func extractFiles(ctx context.Context, w *jobs.Worker, paths []string, concurrency int) ([]fileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]fileResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			res := w.ExtractDocument(gCtx, filepath.Base(path), data)
			results[i] = newFileResult(path, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newTextCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "text",
		Short: "Extract invoice fields from plain text read on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.worker(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			res := w.ExtractText(string(b))
			return writeJSON(cmd.OutOrStdout(), newFileResult("-", res))
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(out io.Writer, results []fileResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCONFIDENCE\tBAND\tINVOICE\tCUSTOMER\tAMOUNT\tDUE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.File, r.Data.Confidence, r.Band,
			r.Data.InvoiceNumber, r.Data.CustomerName, r.Data.Amount, r.Data.DueDate)
	}
	return tw.Flush()
}

func writeWorkbook(path string, results []fileResult) error {
	records := make([]export.Record, 0, len(results))
	for _, r := range results {
		if r.State != invoice.StateDone {
			continue
		}
		records = append(records, export.Record{Filename: filepath.Base(r.File), Data: r.Data})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := export.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
