package invoice

// Confidence folds field results into the 0-100 score: the sum of the weights
// of populated fields, clamped. A readable document always scores at least 1
// so that 0 stays reserved for documents that could not be read.
func Confidence(results []FieldResult) int {
	sum := 0
	for _, r := range results {
		if r.Found() {
			sum += r.Weight
		}
	}
	return min(max(sum, 1), 100)
}

// Band is a caller-side bucket over the raw confidence score.
type Band string

const (
	BandFailed  Band = "failed"
	BandLimited Band = "limited"
	BandGood    Band = "good"
	BandHigh    Band = "high"
)

// BandFor maps a confidence score to its band.
func BandFor(confidence int) Band {
	switch {
	case confidence <= 0:
		return BandFailed
	case confidence < 30:
		return BandLimited
	case confidence < 70:
		return BandGood
	default:
		return BandHigh
	}
}

// Message is the text the UI shows next to the confidence badge.
func (b Band) Message() string {
	switch b {
	case BandFailed:
		return "Parsing failed, please enter the invoice details manually."
	case BandLimited:
		return "Limited data extracted, verify everything."
	case BandGood:
		return "Good confidence, please verify."
	default:
		return "High confidence."
	}
}
