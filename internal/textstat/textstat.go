/*
Package textstat scores text readability for the keyword series.
*/
package textstat

import (
	"math"
	"strings"
	"unicode"
)

// Scorer returns a readability score for a piece of text.
type Scorer interface {
	Score(text string) float64
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(string) float64

func (f ScorerFunc) Score(text string) float64 { return f(text) }

// GunningFog implements Scorer with the Gunning fog index:
// 0.4 * (words/sentences + 100 * complexWords/words), rounded to two places.
type GunningFog struct{}

func (GunningFog) Score(text string) float64 {
	words := wordsOf(text)
	if len(words) == 0 {
		return 0
	}

	complexWords := 0
	for _, w := range words {
		if Syllables(w) >= 3 {
			complexWords++
		}
	}

	n := float64(len(words))
	fog := 0.4 * (n/float64(sentences(text)) + 100*float64(complexWords)/n)
	return math.Round(fog*100) / 100
}

func wordsOf(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
	words := fields[:0]
	for _, f := range fields {
		if strings.IndexFunc(f, unicode.IsLetter) >= 0 || strings.IndexFunc(f, unicode.IsDigit) >= 0 {
			words = append(words, f)
		}
	}
	return words
}

// sentences counts runs of terminal punctuation; text without any is one sentence.
func sentences(text string) int {
	count := 0
	inTerminal := false
	for _, r := range text {
		terminal := r == '.' || r == '!' || r == '?'
		if terminal && !inTerminal {
			count++
		}
		inTerminal = terminal
	}
	if count == 0 {
		return 1
	}
	return count
}

// Syllables estimates the syllable count of an English word by counting vowel
// groups, discounting a silent trailing "e".
func Syllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if count > 1 && strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") {
		count--
	}
	if count == 0 && strings.IndexFunc(w, unicode.IsLetter) >= 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
