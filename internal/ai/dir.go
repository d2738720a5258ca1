package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shanehull/filinglens/internal/types"
)

// nluResponse is the keyword/sentiment/relation response shape of a classic
// NLU service.
type nluResponse struct {
	Keywords []struct {
		Text      string  `json:"text"`
		Relevance float64 `json:"relevance"`
		Count     int     `json:"count"`
	} `json:"keywords"`
	Sentiment struct {
		Document struct {
			Score float64 `json:"score"`
			Label string  `json:"label"`
		} `json:"document"`
	} `json:"sentiment"`
	Relations []struct {
		Type      string `json:"type"`
		Arguments []struct {
			Text string `json:"text"`
		} `json:"arguments"`
	} `json:"relations"`
}

// ParseNLU converts an NLU response document into an AnnotationResult.
// Relations with fewer than two arguments are dropped.
func ParseNLU(data []byte) (types.AnnotationResult, error) {
	var raw nluResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.AnnotationResult{}, fmt.Errorf("failed to unmarshal NLU response: %w", err)
	}

	result := types.AnnotationResult{
		Sentiment: types.Sentiment{DocumentScore: raw.Sentiment.Document.Score, Label: raw.Sentiment.Document.Label},
	}
	for _, kw := range raw.Keywords {
		result.Keywords = append(result.Keywords, types.Keyword{Text: kw.Text, Relevance: kw.Relevance, Count: kw.Count})
	}
	for _, rel := range raw.Relations {
		if len(rel.Arguments) < 2 {
			continue
		}
		result.Relations = append(result.Relations, types.Relation{
			Type:    rel.Type,
			Subject: rel.Arguments[0].Text,
			Object:  rel.Arguments[1].Text,
		})
	}
	return result, nil
}

// DirAnnotator serves annotations stored as {Dir}/{entity}/{year}.json, falling
// back to {Dir}/{year}.json.
type DirAnnotator struct {
	Dir string
}

// Annotate loads the stored result for req's entity and year. A non-empty
// entity must be a single path element.
func (a *DirAnnotator) Annotate(ctx context.Context, req types.AnnotationRequest) (types.AnnotationResult, error) {
	const op = "ai.dir.annotate"
	if err := ctx.Err(); err != nil {
		return types.AnnotationResult{}, err
	}

	name := strconv.Itoa(int(req.Year)) + ".json"
	candidates := []string{filepath.Join(a.Dir, name)}
	if req.Entity != "" {
		if err := types.CheckEntity(op, req.Entity); err != nil {
			return types.AnnotationResult{}, err
		}
		candidates = append([]string{filepath.Join(a.Dir, req.Entity, name)}, candidates...)
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return types.AnnotationResult{}, &types.OpError{Op: op, Kind: types.KindAnnotation, Path: p, Err: err}
		}
		result, err := ParseNLU(data)
		if err != nil {
			return types.AnnotationResult{}, &types.OpError{Op: op, Kind: types.KindAnnotation, Path: p, Err: err}
		}
		return result, nil
	}

	return types.AnnotationResult{}, &types.OpError{
		Op:   op,
		Kind: types.KindAnnotation,
		Path: candidates[0],
		Err:  fmt.Errorf("no stored annotation for %d", int(req.Year)),
	}
}
