package filings

import (
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CleanMarkup removes every <...> tag and leaves all other bytes untouched.
// Entities such as &nbsp; are not decoded.
func CleanMarkup(raw string) string {
	return tagPattern.ReplaceAllString(raw, "")
}

// HTMLCleaner keeps only the text tokens of a document, decoding entities and
// dropping script and style bodies. Non-breaking spaces become plain spaces.
type HTMLCleaner struct{}

// Clean returns the text content of raw.
func (HTMLCleaner) Clean(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				slog.Warn("html tokenizer stopped early", "error", err)
			}
			return strings.ReplaceAll(sb.String(), "\u00a0", " ")
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
