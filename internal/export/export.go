// Package export writes extracted invoice records to an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/invoicegest/internal/invoice"
)

// Sheet is the name of the worksheet holding the records.
const Sheet = "Invoices"

// Record is one row of the export.
type Record struct {
	Filename string
	DocID    string
	Data     invoice.ExtractedInvoiceData
}

var headers = []string{
	"File",
	"Document ID",
	"Invoice Number",
	"Customer",
	"Customer Email",
	"Vendor",
	"Description",
	"Amount",
	"Due Date",
	"Confidence",
	"Band",
}

// Write renders records as an XLSX workbook to w.
func Write(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(Sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	index, err := f.GetSheetIndex(Sheet)
	if err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(Sheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(Sheet, cell, v)
		}
		d := r.Data
		write(1, r.Filename)
		write(2, r.DocID)
		write(3, d.InvoiceNumber)
		write(4, d.CustomerName)
		write(5, d.CustomerEmail)
		write(6, d.VendorName)
		write(7, d.Description)
		write(8, amountCell(d.Amount))
		write(9, d.DueDate)
		write(10, d.Confidence)
		write(11, string(invoice.BandFor(d.Confidence)))
	}

	_ = f.SetColWidth(Sheet, "A", "B", 20)
	_ = f.SetColWidth(Sheet, "C", "C", 16)
	_ = f.SetColWidth(Sheet, "D", "F", 28)
	_ = f.SetColWidth(Sheet, "G", "G", 48)
	_ = f.SetColWidth(Sheet, "H", "K", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// amountCell stores amounts as numbers so spreadsheets can sum them. Amounts
// that do not parse are kept as text.
func amountCell(amount string) any {
	if amount == "" {
		return ""
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	v, _ := d.Float64()
	return v
}
