package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrRead          = errors.New("document unreadable")
	ErrMalformedPath = errors.New("no fiscal year in path")
	ErrAnnotation    = errors.New("annotation failed")
	ErrEmptyGraph    = errors.New("no relations to graph")
	ErrEmptyCorpus   = errors.New("no documents processed")
	ErrInvalidInput  = errors.New("invalid input")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindRead          ErrorKind = "read"
	KindMalformedPath ErrorKind = "malformed_path"
	KindAnnotation    ErrorKind = "annotation"
	KindEmptyGraph    ErrorKind = "empty_graph"
	KindEmptyCorpus   ErrorKind = "empty_corpus"
	KindInvalidInput  ErrorKind = "invalid_input"
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:      ErrNotFound,
	KindRead:          ErrRead,
	KindMalformedPath: ErrMalformedPath,
	KindAnnotation:    ErrAnnotation,
	KindEmptyGraph:    ErrEmptyGraph,
	KindEmptyCorpus:   ErrEmptyCorpus,
	KindInvalidInput:  ErrInvalidInput,
}

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) match an OpError of KindNotFound.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// IsKind reports whether err carries an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first OpError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}
