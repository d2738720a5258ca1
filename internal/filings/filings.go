/*
Package filings locates retrieved regulatory filings, strips their markup and
assembles them into a corpus indexed by fiscal year.
*/
package filings

import (
	"context"

	"github.com/shanehull/filinglens/internal/types"
)

const (
	DefaultFilingType   = "10-K"
	DefaultDocumentFile = "full-submission.txt"
)

// Source resolves and reads the documents a retrieval run persisted for an
// entity under {base}/{entity}/{filingType}/{subfolder}/{documentFile}.
type Source interface {
	Resolve(ctx context.Context, entity string) ([]types.DocumentRef, error)
	Read(ctx context.Context, ref types.DocumentRef) ([]byte, error)
}

// Cleaner turns raw filing text into plain text.
type Cleaner interface {
	Clean(raw string) string
}

// CleanerFunc adapts a function to Cleaner.
type CleanerFunc func(string) string

func (f CleanerFunc) Clean(raw string) string { return f(raw) }

// NewCleaner returns the cleaner registered under name ("naive" or "html").
func NewCleaner(name string) (Cleaner, error) {
	switch name {
	case "", "naive":
		return CleanerFunc(CleanMarkup), nil
	case "html":
		return HTMLCleaner{}, nil
	default:
		return nil, &types.OpError{Op: "filings.new_cleaner", Kind: types.KindInvalidInput, Path: name}
	}
}
