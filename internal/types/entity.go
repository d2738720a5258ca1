package types

import (
	"errors"
	"path/filepath"
	"strings"
)

// CheckEntity rejects entity identifiers that are not a single clean path
// element, so they can be joined under a base directory or object prefix.
func CheckEntity(op, entity string) error {
	if strings.TrimSpace(entity) == "" {
		return &OpError{Op: op, Kind: KindInvalidInput, Err: errors.New("empty entity")}
	}
	if entity == "." || entity == ".." ||
		strings.ContainsAny(entity, `/\`) ||
		filepath.IsAbs(entity) ||
		filepath.Clean(entity) != entity {
		return &OpError{Op: op, Kind: KindInvalidInput, Path: entity, Err: errors.New("entity must be a single path element")}
	}
	return nil
}
