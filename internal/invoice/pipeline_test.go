package invoice

import (
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalInvoice = "Invoice #INV-100 To: Acme Corp Email: a@b.com Description: Consulting work done Amount: $500.00 Due: 01/15/2025"

const billToInvoice = `
INVOICE #INV-2024-001

From: Acme Corporation
123 Business St, City, State 12345
Email: billing@acme.com

Bill To: TechStart Inc
456 Innovation Ave, Tech City, TC 67890
Email: accounts@techstart.com

Description: Professional consulting services for Q1 2024
Amount: $15,000.00
Due Date: 02/15/2024
Payment Terms: Net 30

Total Due: $15,000.00
`

const servicesInvoice = `
INVOICE

From: Global Solutions Ltd
789 Enterprise Blvd, Metro City, MC 54321
Email: finance@globalsolutions.com

Customer: StartupCo
321 Growth St, Startup City, SC 98765
Email: billing@startupco.com

Services Rendered:
- Web development and design
- Database optimization
- API integration

Amount: $8,500.00
Due: 01/30/2024
Invoice #: GS-2024-002

Total: $8,500.00
`

func TestExtract_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t\f\r\n"} {
		res := Extract(in)
		assert.Equal(t, StateFailed, res.State)
		assert.True(t, res.Failed())
		assert.ErrorIs(t, res.Failure, ErrUnreadableDocument)
		assert.Equal(t, 0, res.Data.Confidence)
		assert.NotEmpty(t, res.Data.Description, "failed result carries a diagnostic")

		d := res.Data
		d.Description = ""
		assert.Equal(t, ExtractedInvoiceData{}, d, "every other field is absent")
		assert.Empty(t, res.Fields)
		assert.Equal(t, BandFailed, res.Band())
	}
}

func TestExtract_MinimalInvoice(t *testing.T) {
	res := Extract(minimalInvoice)
	require.Equal(t, StateDone, res.State)
	require.NoError(t, res.Failure)

	assert.Equal(t, ExtractedInvoiceData{
		Amount:        "500.00",
		DueDate:       "2025-01-15",
		CustomerName:  "Acme Corp",
		CustomerEmail: "a@b.com",
		Description:   "Consulting work done",
		InvoiceNumber: "INV-100",
		Confidence:    100,
	}, res.Data)
	assert.Equal(t, BandHigh, res.Band())
}

func TestExtract_Canonicalization(t *testing.T) {
	res := Extract("Invoice #A-1\nTo: Acme Corporation\nAmount: $10")
	assert.Equal(t, "Acme Corp", res.Data.CustomerName)
}

func TestExtract_AmbiguousAmountPrefersCurrencySymbol(t *testing.T) {
	res := Extract("Deposit received $50 last week. Total: $500.00")
	assert.Equal(t, "50", res.Data.Amount)
	require.NotEmpty(t, res.Fields)
	assert.Equal(t, "currency-symbol", res.Fields[0].Rule)
}

func TestExtract_BillToLayout(t *testing.T) {
	res := Extract(billToInvoice)
	require.Equal(t, StateDone, res.State)

	assert.Equal(t, "15000.00", res.Data.Amount)
	assert.Equal(t, "2024-02-15", res.Data.DueDate)
	assert.Equal(t, "TechStart Inc", res.Data.CustomerName)
	// The first address in the text wins, which here is the vendor's.
	assert.Equal(t, "billing@acme.com", res.Data.CustomerEmail)
	assert.Equal(t, "Professional consulting services for Q1 2024", res.Data.Description)
	assert.Equal(t, "INV-2024-001", res.Data.InvoiceNumber)
	assert.Equal(t, "Acme Corporation", res.Data.VendorName, "vendor names are not canonicalized")
	assert.Equal(t, 100, res.Data.Confidence)
}

func TestExtract_ServicesRenderedBulletsUseFallback(t *testing.T) {
	res := Extract(servicesInvoice)
	require.Equal(t, StateDone, res.State)

	assert.Equal(t, "8500.00", res.Data.Amount)
	assert.Equal(t, "2024-01-30", res.Data.DueDate)
	assert.Equal(t, "StartupCo", res.Data.CustomerName)
	assert.Equal(t, "GS-2024-002", res.Data.InvoiceNumber)
	assert.Equal(t, "Global Solutions Ltd", res.Data.VendorName)
	assert.Equal(t, "Web development and design, Database optimization, API integration", res.Data.Description)

	var desc FieldResult
	for _, f := range res.Fields {
		if f.Field == FieldDescription {
			desc = f
		}
	}
	assert.Equal(t, SourceFallback, desc.Source)
	assert.Equal(t, WeightDescription, desc.Weight)
}

func TestExtract_LabelOnOwnLineUsesFallback(t *testing.T) {
	res := Extract("Bill To:\nNorthwind Traders\nAmount: $20")
	assert.Equal(t, "Northwind Traders", res.Data.CustomerName)
	require.Len(t, res.Fields, 2)
	assert.Equal(t, FieldCustomerName, res.Fields[1].Field)
	assert.Equal(t, SourceFallback, res.Fields[1].Source)
	assert.Equal(t, WeightAmount+WeightCustomerName, res.Data.Confidence)
}

func TestExtract_FallbackWeighsLikePrimary(t *testing.T) {
	primary := Extract("Bill To: Northwind Traders")
	fallback := Extract("Bill To:\nNorthwind Traders")
	assert.Equal(t, primary.Data.CustomerName, fallback.Data.CustomerName)
	assert.Equal(t, primary.Data.Confidence, fallback.Data.Confidence)
}

func TestExtract_VendorCarriesNoWeight(t *testing.T) {
	withVendor := Extract("From: Globex Industries\nAmount: $75")
	withoutVendor := Extract("Amount: $75")
	assert.Equal(t, "Globex Industries", withVendor.Data.VendorName)
	assert.Equal(t, withoutVendor.Data.Confidence, withVendor.Data.Confidence)
}

func TestExtract_ReadableWithoutFieldsIsNotFailure(t *testing.T) {
	res := Extract("Thank you for your business")
	assert.Equal(t, StateDone, res.State)
	assert.NoError(t, res.Failure)
	assert.Equal(t, 1, res.Data.Confidence)
	assert.Equal(t, BandLimited, res.Band())
	assert.Empty(t, res.Data.Description)
}

func TestExtractTextLayer_ReadErrorFails(t *testing.T) {
	readErr := errors.New("no text layer")
	res := NewEngine(nil).ExtractTextLayer(minimalInvoice, readErr)
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Failure, ErrUnreadableDocument)
	assert.ErrorIs(t, res.Failure, readErr)
	assert.Equal(t, 0, res.Data.Confidence)
	assert.Empty(t, res.Data.Amount)
}

type panicPattern struct{}

func (panicPattern) Candidates(RawText) iter.Seq[string] {
	return func(func(string) bool) { panic("malformed rule") }
}

func TestExtract_PanicInExtractorDegradesToFailed(t *testing.T) {
	e := NewEngine(nil)
	e.extractors = append(append([]Extractor{}, defaultExtractors...), Extractor{
		Field:  "broken",
		Weight: 5,
		Rules:  []Rule{{Name: "boom", Pattern: panicPattern{}, Validate: ValidName, Weight: 5}},
	})

	var res Result
	require.NotPanics(t, func() { res = e.Extract(minimalInvoice) })
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Failure, ErrInternal)
	assert.Equal(t, 0, res.Data.Confidence)
	assert.Empty(t, res.Data.Amount)
	assert.NotEmpty(t, res.Data.Description)
}

func TestExtract_Deterministic(t *testing.T) {
	for _, in := range []string{"", minimalInvoice, billToInvoice, servicesInvoice, "random words only"} {
		assert.Equal(t, Extract(in), Extract(in))
	}
}

func TestExtract_ConfidenceMonotonic(t *testing.T) {
	base := "Invoice #INV-7 Amount: $120.00"
	richer := base + "\nBill To: Initech LLC\nEmail: ap@initech.com\nDue: 03/01/2025"

	r1, r2 := Extract(base), Extract(richer)
	for _, f := range r1.Fields {
		found := false
		for _, g := range r2.Fields {
			if g.Field == f.Field && g.Value == f.Value {
				found = true
			}
		}
		require.True(t, found, "field %s must survive in the richer text", f.Field)
	}
	assert.GreaterOrEqual(t, r2.Data.Confidence, r1.Data.Confidence)
}

const writtenDueInvoice = "Invoice #INV-9\nDue: 15 January 2025\nBill To: Initech LLC"

func TestExtract_FieldIndependence(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		removals map[Field]string
	}{
		{
			name: "minimal",
			doc:  minimalInvoice,
			removals: map[Field]string{
				FieldCustomerEmail: "a@b.com",
				FieldAmount:        "$500.00",
				FieldInvoiceNumber: "#INV-100",
				FieldDueDate:       "01/15/2025",
				FieldCustomerName:  "Acme Corp",
				FieldDescription:   "Consulting work done",
			},
		},
		{
			name: "written due date",
			doc:  writtenDueInvoice,
			removals: map[Field]string{
				FieldDueDate:       "15 January 2025",
				FieldCustomerName:  "Initech LLC",
				FieldInvoiceNumber: "#INV-9",
			},
		},
	}
	for _, tc := range tests {
		full := Extract(tc.doc)
		for field, substr := range tc.removals {
			t.Run(tc.name+"/"+string(field), func(t *testing.T) {
				require.NotEmpty(t, valueOf(full, field), "field must be found before removal")
				res := Extract(strings.Replace(tc.doc, substr, "", 1))
				assert.Empty(t, valueOf(res, field))
				for _, f := range full.Fields {
					if f.Field == field {
						continue
					}
					assert.Equal(t, f.Value, valueOf(res, f.Field), "field %s changed", f.Field)
				}
			})
		}
	}
}

func TestExtract_WrittenDueDateIsNotAnAmount(t *testing.T) {
	for _, in := range []string{
		writtenDueInvoice,
		"Balance: 3rd March 2025",
		"Total: 1 Feb. 2025",
	} {
		res := Extract(in)
		assert.Empty(t, res.Data.Amount, in)
	}

	res := Extract(writtenDueInvoice)
	assert.Equal(t, "2025-01-15", res.Data.DueDate)
	assert.Equal(t, "Initech LLC", res.Data.CustomerName)
	assert.Equal(t, WeightDueDate+WeightCustomerName+WeightInvoiceNumber, res.Data.Confidence)

	assert.Equal(t, "15", Extract("Due: 15 units").Data.Amount, "a bare number still counts")
}

func TestExtract_ToFallbackNeedsWholeWord(t *testing.T) {
	for _, in := range []string{"Photo: Initech LLC", "Notes\nAuto: Initech LLC"} {
		res := Extract(in)
		assert.Empty(t, res.Data.CustomerName, in)
		assert.Equal(t, 1, res.Data.Confidence, in)
	}
	assert.Equal(t, "Initech LLC", Extract("Ship to: Initech LLC").Data.CustomerName)
}

func TestExtract_FormatRunes(t *testing.T) {
	res := Extract("\u200b\u200b\u200b")
	assert.Equal(t, StateFailed, res.State)
	assert.ErrorIs(t, res.Failure, ErrUnreadableDocument)

	res = Extract("Bill To: Initech LLC\u200b")
	assert.Equal(t, "Initech LLC", res.Data.CustomerName)
}

func TestExtract_ResultStateIsTerminal(t *testing.T) {
	for _, in := range []string{"", "\u200b", "random words only", minimalInvoice, billToInvoice} {
		res := Extract(in)
		assert.Contains(t, []State{StateDone, StateFailed}, res.State, "%q", in)
	}
}

func TestExtract_ConcurrentUse(t *testing.T) {
	e := NewEngine(nil)
	want := e.Extract(billToInvoice)
	done := make(chan Result, 8)
	for range 8 {
		go func() { done <- e.Extract(billToInvoice) }()
	}
	for range 8 {
		assert.Equal(t, want, <-done)
	}
}

func valueOf(r Result, f Field) string {
	for _, fr := range r.Fields {
		if fr.Field == f {
			return fr.Value
		}
	}
	return ""
}
