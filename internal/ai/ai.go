/*
Package ai provides annotation engines that extract keywords, document
sentiment and relation triples from a year's filing text. GeminiAnnotator calls
the Gemini API; DirAnnotator serves pre-computed results from disk.
*/
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/shanehull/filinglens/internal/types"
)

const DefaultModel = "gemini-2.5-flash"

// Config carries the credentials and limits for the Gemini annotator.
type Config struct {
	APIKey string
	Model  string
	// MaxInputChars truncates filing text before it is sent; zero sends all.
	MaxInputChars int
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiAnnotator struct {
	models contentGenerator
	cfg    Config
}

func NewGeminiAnnotator(ctx context.Context, cfg Config) (*GeminiAnnotator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAnnotator{models: client.Models, cfg: cfg}, nil
}

type geminiKeyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
	Count     int     `json:"count"`
}

type geminiRelation struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Object  string `json:"object"`
}

type geminiAnnotation struct {
	Keywords  []geminiKeyword `json:"keywords"`
	Sentiment struct {
		Score float64 `json:"score"`
		Label string  `json:"label"`
	} `json:"sentiment"`
	Relations []geminiRelation `json:"relations"`
}

func (a *GeminiAnnotator) Annotate(ctx context.Context, req types.AnnotationRequest) (types.AnnotationResult, error) {
	const op = "ai.gemini.annotate"

	userContent := &genai.Content{
		Parts: []*genai.Part{
			{Text: buildUserPrompt(req.Entity, req.Year, truncate(req.Text, a.cfg.MaxInputChars))},
		},
		Role: "user",
	}

	resp, err := a.models.GenerateContent(ctx, a.cfg.Model, []*genai.Content{userContent}, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    getResponseSchema(),
	})
	if err != nil {
		return types.AnnotationResult{}, &types.OpError{Op: op, Kind: types.KindAnnotation, Err: fmt.Errorf("gemini API call failed: %w", err)}
	}

	result, err := parseGeminiResponse(resp.Text())
	if err != nil {
		return types.AnnotationResult{}, &types.OpError{Op: op, Kind: types.KindAnnotation, Err: err}
	}
	return result, nil
}

func parseGeminiResponse(respText string) (types.AnnotationResult, error) {
	if respText == "" {
		return types.AnnotationResult{}, errors.New("empty gemini response")
	}

	var raw geminiAnnotation
	if err := json.Unmarshal([]byte(respText), &raw); err != nil {
		return types.AnnotationResult{}, fmt.Errorf("failed to unmarshal gemini JSON response: %w. Raw text: %s", err, respText)
	}

	result := types.AnnotationResult{
		Sentiment: types.Sentiment{DocumentScore: raw.Sentiment.Score, Label: raw.Sentiment.Label},
	}
	for _, kw := range raw.Keywords {
		result.Keywords = append(result.Keywords, types.Keyword(kw))
	}
	for _, rel := range raw.Relations {
		result.Relations = append(result.Relations, types.Relation(rel))
	}
	return result, nil
}

func getResponseSchema() *genai.Schema {
	keywordSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text":      {Type: genai.TypeString, Description: "The keyword or key phrase as it appears in the text."},
			"relevance": {Type: genai.TypeNumber, Description: "Relevance to the document between 0 and 1."},
			"count":     {Type: genai.TypeInteger, Description: "Number of occurrences in the text."},
		},
		Required: []string{"text", "relevance", "count"},
	}

	relationSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type":    {Type: genai.TypeString, Description: "Predicate in camelCase, e.g. employedBy, locatedAt, ownerOf."},
			"subject": {Type: genai.TypeString, Description: "Subject entity text."},
			"object":  {Type: genai.TypeString, Description: "Object entity text."},
		},
		Required: []string{"type", "subject", "object"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"keywords": {
				Type:        genai.TypeArray,
				Items:       keywordSchema,
				Description: "Up to 50 keywords ordered by relevance.",
			},
			"sentiment": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"score": {Type: genai.TypeNumber, Description: "Document sentiment between -1 and 1."},
					"label": {Type: genai.TypeString, Enum: []string{"positive", "neutral", "negative"}},
				},
				Required: []string{"score", "label"},
			},
			"relations": {
				Type:        genai.TypeArray,
				Items:       relationSchema,
				Description: "Relation triples between named entities.",
			},
		},
		Required: []string{"keywords", "sentiment", "relations"},
	}
}

// truncate cuts text to at most n runes.
func truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
