/*
Package series reduces aligned annotations into year-ordered sentiment and
keyword series.
*/
package series

import (
	"fmt"
	"slices"
	"sort"

	"github.com/shanehull/filinglens/internal/textstat"
	"github.com/shanehull/filinglens/internal/types"
)

// markupArtifact is the entity name left behind when &nbsp; survives cleaning.
const markupArtifact = "nbsp"

// Sentiment pairs each year with its document sentiment score, ascending by year.
func Sentiment(years []types.FiscalYear, sentiments []types.Sentiment) ([]types.SeriesPoint, error) {
	if len(years) != len(sentiments) {
		return nil, &types.OpError{
			Op:   "series.sentiment",
			Kind: types.KindInvalidInput,
			Err:  fmt.Errorf("%d years but %d sentiments", len(years), len(sentiments)),
		}
	}

	points := make([]types.SeriesPoint, len(years))
	for i, y := range years {
		points[i] = types.SeriesPoint{Year: y, Value: sentiments[i].DocumentScore}
	}
	slices.SortStableFunc(points, func(a, b types.SeriesPoint) int { return int(a.Year - b.Year) })
	return points, nil
}

// Keywords scores each keyword's readability, drops the "nbsp" artifact and
// orders the rest by count descending. Equal counts keep their input order.
func Keywords(keywords []types.Keyword, scorer textstat.Scorer) []types.KeywordPoint {
	if scorer == nil {
		scorer = textstat.GunningFog{}
	}

	points := make([]types.KeywordPoint, 0, len(keywords))
	for _, kw := range keywords {
		if kw.Text == markupArtifact {
			continue
		}
		points = append(points, types.KeywordPoint{
			Text:        kw.Text,
			Relevance:   kw.Relevance,
			Count:       kw.Count,
			Readability: scorer.Score(kw.Text),
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Count > points[j].Count })
	return points
}
