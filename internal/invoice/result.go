package invoice

import "errors"

var (
	// ErrUnreadableDocument means the text layer was missing or empty.
	ErrUnreadableDocument = errors.New("unreadable document")
	// ErrInternal wraps a panic recovered from inside an extractor.
	ErrInternal = errors.New("internal extraction failure")
)

// Field names one target of extraction. Values match the JSON keys of
// ExtractedInvoiceData.
type Field string

const (
	FieldAmount        Field = "amount"
	FieldDueDate       Field = "dueDate"
	FieldCustomerName  Field = "customerName"
	FieldCustomerEmail Field = "customerEmail"
	FieldInvoiceNumber Field = "invoiceNumber"
	FieldDescription   Field = "description"
	FieldVendorName    Field = "vendorName"
)

// ExtractedInvoiceData is the record handed to the UI and to persistence.
// Empty fields were not found.
type ExtractedInvoiceData struct {
	Amount        string `json:"amount,omitempty"`
	DueDate       string `json:"dueDate,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	Description   string `json:"description,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	VendorName    string `json:"vendorName,omitempty"`
	Confidence    int    `json:"confidence"`
}

func (d *ExtractedInvoiceData) set(f Field, v string) {
	switch f {
	case FieldAmount:
		d.Amount = v
	case FieldDueDate:
		d.DueDate = v
	case FieldCustomerName:
		d.CustomerName = v
	case FieldCustomerEmail:
		d.CustomerEmail = v
	case FieldInvoiceNumber:
		d.InvoiceNumber = v
	case FieldDescription:
		d.Description = v
	case FieldVendorName:
		d.VendorName = v
	}
}

// Source tells which mechanism populated a field.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// FieldResult is one extractor's verdict. Rule is empty when nothing matched.
type FieldResult struct {
	Field  Field  `json:"field"`
	Value  string `json:"value,omitempty"`
	Rule   string `json:"rule,omitempty"`
	Source Source `json:"source,omitempty"`
	Weight int    `json:"weight"`
}

// Found reports whether the field was populated.
func (r FieldResult) Found() bool { return r.Value != "" }

// State is the position of one extraction run in its lifecycle.
type State string

// StateIdle and StateRunning only name the stages before a run returns; a
// Result always carries StateDone or StateFailed.
const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
)

// Result is the outcome of one extraction run. State is StateDone or
// StateFailed; Failure is set only for StateFailed, where Data carries a
// zero confidence and a diagnostic in Description.
type Result struct {
	State   State                `json:"state"`
	Data    ExtractedInvoiceData `json:"data"`
	Fields  []FieldResult        `json:"fields,omitempty"`
	Failure error                `json:"-"`
}

// Failed reports whether the document could not be read.
func (r Result) Failed() bool { return r.State == StateFailed }

// Band is the caller-facing confidence bucket.
func (r Result) Band() Band { return BandFor(r.Data.Confidence) }
