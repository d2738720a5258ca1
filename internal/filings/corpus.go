package filings

import (
	"slices"

	"github.com/shanehull/filinglens/internal/types"
)

// Corpus maps fiscal years to cleaned filing text. Iteration is always in
// ascending year order, whatever order entries were set in.
type Corpus struct {
	texts map[types.FiscalYear]string
}

// Entry is one year of a corpus.
type Entry struct {
	Year types.FiscalYear
	Text string
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{texts: make(map[types.FiscalYear]string)}
}

// Set stores text for year, replacing any earlier entry.
func (c *Corpus) Set(year types.FiscalYear, text string) {
	c.texts[year] = text
}

// Get returns the text stored for year.
func (c *Corpus) Get(year types.FiscalYear) (string, bool) {
	text, ok := c.texts[year]
	return text, ok
}

// Len returns the number of years held.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.texts)
}

// Years returns the held years in ascending order.
func (c *Corpus) Years() []types.FiscalYear {
	if c == nil {
		return nil
	}
	years := make([]types.FiscalYear, 0, len(c.texts))
	for y := range c.texts {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Entries returns every year with its text, ascending by year.
func (c *Corpus) Entries() []Entry {
	years := c.Years()
	entries := make([]Entry, 0, len(years))
	for _, y := range years {
		entries = append(entries, Entry{Year: y, Text: c.texts[y]})
	}
	return entries
}

// Sizes returns the cleaned text length per year.
func (c *Corpus) Sizes() map[types.FiscalYear]int {
	sizes := make(map[types.FiscalYear]int, c.Len())
	for _, e := range c.Entries() {
		sizes[e.Year] = len(e.Text)
	}
	return sizes
}

// Subset returns a corpus holding only the given years.
func (c *Corpus) Subset(years []types.FiscalYear) *Corpus {
	out := NewCorpus()
	for _, y := range years {
		if text, ok := c.texts[y]; ok {
			out.Set(y, text)
		}
	}
	return out
}
