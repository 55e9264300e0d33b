package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CollapsesWhitespaceAndKeepsLines(t *testing.T) {
	rt, ok := Normalize("  Bill To:\tAcme   Corp \r\n\n\fAmount: $5 ")
	require.True(t, ok)
	assert.Equal(t, "Bill To: Acme Corp Amount: $5", rt.Flat)
	assert.Equal(t, []string{"Bill To: Acme Corp", "Amount: $5"}, rt.Lines)
	assert.Equal(t, []int{18}, rt.breaks)
}

func TestNormalize_Ligatures(t *testing.T) {
	rt, ok := Normalize("Ofﬁce supplies")
	require.True(t, ok)
	assert.Equal(t, "Office supplies", rt.Flat)
}

func TestNormalize_DropsFormatRunes(t *testing.T) {
	rt, ok := Normalize("\ufeffBill To: Initech\u200b LLC\u200b\n\u00adAmount: $5")
	require.True(t, ok)
	assert.Equal(t, "Bill To: Initech LLC Amount: $5", rt.Flat)
	assert.Equal(t, []string{"Bill To: Initech LLC", "Amount: $5"}, rt.Lines)

	_, ok = Normalize("\u200b\u200b\n\ufeff \u2060")
	assert.False(t, ok, "format runes alone are not readable text")
}

func TestNormalize_EmptyInput(t *testing.T) {
	for _, in := range []string{"", " ", "\n\n", " \t"} {
		_, ok := Normalize(in)
		assert.False(t, ok, "%q", in)
	}
}

func TestCaptureAfter(t *testing.T) {
	rt, _ := Normalize("To: Acme Corp Email: a@b.com\nBill To:\nNext Line Co")
	tests := []struct {
		name string
		pos  int
		want string
	}{
		{"stops at next label", len("To:"), "Acme Corp"},
		{"label ending a line is empty", len("To: Acme Corp Email: a@b.com Bill To:"), ""},
		{"past the end", len(rt.Flat), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, captureAfter(rt, tc.pos))
		})
	}
}

func TestCutAtLabel(t *testing.T) {
	assert.Equal(t, "Acme Corp", cutAtLabel(" Acme Corp Invoice Date: 01/01/2025"))
	assert.Equal(t, "Acme Corp", cutAtLabel("Acme Corp, Phone: 555"))
	assert.Equal(t, "Consulting work done", cutAtLabel("Consulting work done"))
	assert.Equal(t, "", cutAtLabel("Email: a@b.com"))
}

func TestFirstAccepted_PriorityAndValidation(t *testing.T) {
	rt, _ := Normalize("Total: $0.00 Amount: $12.50 Total: $99")
	rs := rules(WeightAmount, ValidAmount,
		labeledAmount("total", "total"),
		labeledAmount("amount", "amount"),
	)
	v, r, ok := firstAccepted(rs, rt)
	require.True(t, ok)
	assert.Equal(t, "99", v, "a rejected match moves on to the next match of the same rule")
	assert.Equal(t, "total", r.Name)

	rt, _ = Normalize("Total: $0.00 Amount: $12.50")
	v, r, ok = firstAccepted(rs, rt)
	require.True(t, ok)
	assert.Equal(t, "12.50", v)
	assert.Equal(t, "amount", r.Name)
}
