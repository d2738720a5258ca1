package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("permission denied")
	err := &OpError{Op: "filings.read", Kind: KindRead, Path: "/data/a.txt", Err: root}

	assert.ErrorIs(t, err, root)
	assert.ErrorIs(t, err, ErrRead)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "filings.read: read (path=/data/a.txt): permission denied", err.Error())
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := &OpError{Op: "filings.resolve", Kind: KindNotFound}
	wrapped := fmt.Errorf("building corpus: %w", inner)

	require.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindRead))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestNilOpError(t *testing.T) {
	var err *OpError
	assert.Equal(t, "<nil>", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestCheckEntity(t *testing.T) {
	for _, ok := range []string{"AAPL", "BRK.B", "0000320193", "a..b"} {
		assert.NoError(t, CheckEntity("test", ok), ok)
	}
	for _, bad := range []string{"", " ", ".", "..", "../private", "a/b", `a\b`, "/etc", "AAPL/"} {
		err := CheckEntity("test", bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}
