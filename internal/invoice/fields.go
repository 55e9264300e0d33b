package invoice

import "regexp"

// Extractor owns the priority-ordered rules for one field.
type Extractor struct {
	Field  Field
	Weight int
	Rules  []Rule

	// Canonical rewrites an accepted value; nil leaves it as captured.
	Canonical func(string) string
	// Fallback runs over the line view when no rule matched; nil disables it.
	Fallback *FallbackRule
}

// Extract runs the rules and reports the field with its weight, or the field
// alone when nothing was accepted.
func (x Extractor) Extract(rt RawText) FieldResult {
	v, r, ok := firstAccepted(x.Rules, rt)
	if !ok {
		return FieldResult{Field: x.Field}
	}
	if x.Canonical != nil {
		v = x.Canonical(v)
	}
	return FieldResult{Field: x.Field, Value: v, Rule: r.Name, Source: SourcePrimary, Weight: r.Weight}
}

const (
	currencySymbol = `[$€£¥₹]`
	// A number with optional thousands groups and decimals, followed by
	// something that cannot continue it (so "01/15/2025" never reads as 01).
	amountNumber = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)(?:$|[^\d/\-.,]|[.,](?:$|\D))`
	monthName    = `(?:January|February|March|April|May|June|July|August|September|October|November|December|` +
		`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec)\.?`
	dateValue = `(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}/(?:\d{4}|\d{2})|\d{1,2}-\d{1,2}-\d{4}|` +
		monthName + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}|` +
		`\d{1,2}(?:st|nd|rd|th)?\s+` + monthName + `,?\s+\d{4})\b`
	invoiceToken = `([A-Za-z0-9][A-Za-z0-9\-]*)`
)

// rules builds a rule list sharing one validator and weight.
func rules(weight int, v Validator, named ...namedPattern) []Rule {
	out := make([]Rule, len(named))
	for i, n := range named {
		out[i] = Rule{Name: n.name, Pattern: n.pattern, Validate: v, Weight: weight}
	}
	return out
}

type namedPattern struct {
	name    string
	pattern Pattern
}

// startsDate matches text that opens with a date, so "Due: 15 January 2025"
// never reads 15 as an amount.
var startsDate = regexp.MustCompile(`(?i)^` + dateValue)

func labeledAmount(name, expr string) namedPattern {
	return namedPattern{name, captureUnless(`(?i)\b` + expr + `\s*:\s*(?:` + currencySymbol + `|usd|eur|gbp)?\s*` + amountNumber, startsDate)}
}

func labeledDate(name, expr string) namedPattern {
	return namedPattern{name, capture(`(?i)\b` + expr + `\s*:\s*` + dateValue)}
}

func labeledText(name, expr string) namedPattern {
	return namedPattern{name, label(expr)}
}

// Weights contributed to confidence by each populated field. Vendor name is
// informational only.
const (
	WeightAmount        = 25
	WeightDueDate       = 20
	WeightCustomerName  = 20
	WeightCustomerEmail = 15
	WeightInvoiceNumber = 10
	WeightDescription   = 10
	WeightVendorName    = 0
)

// DefaultExtractors returns the rule tables in field order. The patterns are
// compiled once; the returned slices are shared and must not be modified.
func DefaultExtractors() []Extractor { return defaultExtractors }

var defaultExtractors = []Extractor{
	{
		Field:  FieldAmount,
		Weight: WeightAmount,
		Rules: rules(WeightAmount, ValidAmount,
			namedPattern{"currency-symbol", capture(currencySymbol + `\s*` + amountNumber)},
			labeledAmount("total", "total"),
			labeledAmount("amount", "amount"),
			labeledAmount("due", "due"),
			labeledAmount("balance", "balance"),
			labeledAmount("grand-total", `grand\s+total`),
			labeledAmount("net-amount", `net\s+amount`),
		),
	},
	{
		Field:  FieldDueDate,
		Weight: WeightDueDate,
		Rules: rules(WeightDueDate, ValidDate,
			labeledDate("due", "due"),
			labeledDate("due-date", `due\s+date`),
			labeledDate("payment-due", `payment\s+due`),
			labeledDate("invoice-date", `invoice\s+date`),
			namedPattern{"bare-date", capture(`(?i)\b` + dateValue)},
		),
	},
	{
		Field:     FieldCustomerName,
		Weight:    WeightCustomerName,
		Canonical: CanonicalCustomerName,
		Fallback:  customerFallback,
		Rules: rules(WeightCustomerName, ValidName,
			labeledText("bill-to", `(?i)\bbill\s+to\s*:`),
			labeledText("customer", `(?i)\bcustomer(?:\s+name)?\s*:`),
			labeledText("client", `(?i)\bclient(?:\s+name)?\s*:`),
			labeledText("sold-to", `(?i)\bsold\s+to\s*:`),
			namedPattern{"line-to", lineLabel(`(?i)^to\s*:`)},
			labeledText("to", `(?i)\bto\s*:`),
		),
	},
	{
		Field:  FieldCustomerEmail,
		Weight: WeightCustomerEmail,
		Rules: rules(WeightCustomerEmail, ValidEmail,
			namedPattern{"email", capture(`([A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,})`)},
		),
	},
	{
		Field:  FieldInvoiceNumber,
		Weight: WeightInvoiceNumber,
		Rules: rules(WeightInvoiceNumber, ValidInvoiceNumber,
			namedPattern{"invoice-#", capture(`(?i)\binvoice\s*#\s*:?\s*` + invoiceToken)},
			namedPattern{"inv-#", capture(`(?i)\binv\.?\s*#\s*:?\s*` + invoiceToken)},
			namedPattern{"invoice-number", capture(`(?i)\binvoice\s+number\s*:\s*` + invoiceToken)},
			namedPattern{"bare-#", capture(`#` + invoiceToken)},
		),
	},
	{
		Field:    FieldDescription,
		Weight:   WeightDescription,
		Fallback: descriptionFallback,
		Rules: rules(WeightDescription, ValidDescription,
			labeledText("description", `(?i)\bdescription\s*:`),
			labeledText("item", `(?i)\bitem\s*:`),
			labeledText("service", `(?i)\bservice\s*:`),
			labeledText("product", `(?i)\bproduct\s*:`),
			labeledText("work", `(?i)\bwork\s*:`),
		),
	},
	{
		Field:  FieldVendorName,
		Weight: WeightVendorName,
		Rules: rules(WeightVendorName, ValidName,
			labeledText("from", `(?i)\bfrom\s*:`),
			labeledText("vendor", `(?i)\bvendor\s*:`),
			labeledText("company", `(?i)\bcompany\s*:`),
			labeledText("business", `(?i)\bbusiness\s*:`),
		),
	},
}
