package filings

import (
	"regexp"
	"strconv"

	"github.com/shanehull/filinglens/internal/types"
)

// Two-digit years at or above the pivot belong to the 1900s.
const centuryPivot = 94

var yearPattern = regexp.MustCompile(`-(\d{2})-`)

// ExtractYear derives the fiscal year from the first "-DD-" in path.
func ExtractYear(path string) (types.FiscalYear, error) {
	m := yearPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, &types.OpError{Op: "filings.extract_year", Kind: types.KindMalformedPath, Path: path}
	}
	yy, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &types.OpError{Op: "filings.extract_year", Kind: types.KindMalformedPath, Path: path, Err: err}
	}
	return ExpandYear(yy), nil
}

// ExpandYear applies the century rule to a two-digit year.
func ExpandYear(yy int) types.FiscalYear {
	if yy >= centuryPivot {
		return types.FiscalYear(1900 + yy)
	}
	return types.FiscalYear(2000 + yy)
}
