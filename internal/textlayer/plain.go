package textlayer

import (
	"context"
	"io"
	"strings"
)

// PlainReader handles plain text files.
type PlainReader struct{}

func (p *PlainReader) Read(_ context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}
