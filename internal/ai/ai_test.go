package ai

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shanehull/filinglens/internal/types"
)

type fakeModels struct {
	text   string
	err    error
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.prompt = contents[0].Parts[0].Text
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

const geminiJSON = `{
  "keywords": [{"text": "iphone", "relevance": 0.93, "count": 41}],
  "sentiment": {"score": 0.21, "label": "positive"},
  "relations": [{"type": "employedBy", "subject": "Tim Cook", "object": "Apple"}]
}`

func TestGeminiAnnotate(t *testing.T) {
	fake := &fakeModels{text: geminiJSON}
	a := &GeminiAnnotator{models: fake, cfg: Config{Model: DefaultModel, MaxInputChars: 5}}

	got, err := a.Annotate(context.Background(), types.AnnotationRequest{Entity: "AAPL", Year: 2019, Text: "abcdefgh"})
	require.NoError(t, err)

	assert.Equal(t, []types.Keyword{{Text: "iphone", Relevance: 0.93, Count: 41}}, got.Keywords)
	assert.Equal(t, types.Sentiment{DocumentScore: 0.21, Label: "positive"}, got.Sentiment)
	assert.Equal(t, []types.Relation{{Type: "employedBy", Subject: "Tim Cook", Object: "Apple"}}, got.Relations)

	assert.Contains(t, fake.prompt, "2019 annual filing for AAPL")
	assert.Contains(t, fake.prompt, "abcde\n")
	assert.NotContains(t, fake.prompt, "abcdef")
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.NotNil(t, fake.config.ResponseSchema)
}

func TestGeminiAnnotateErrors(t *testing.T) {
	a := &GeminiAnnotator{models: &fakeModels{err: errors.New("quota")}}
	_, err := a.Annotate(context.Background(), types.AnnotationRequest{Text: "x"})
	assert.ErrorIs(t, err, types.ErrAnnotation)

	a = &GeminiAnnotator{models: &fakeModels{text: "not json"}}
	_, err = a.Annotate(context.Background(), types.AnnotationRequest{Text: "x"})
	assert.ErrorIs(t, err, types.ErrAnnotation)
}

func TestNewGeminiAnnotatorRequiresKey(t *testing.T) {
	_, err := NewGeminiAnnotator(context.Background(), Config{})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", truncate("héllo", 4))
	assert.Equal(t, "héllo", truncate("héllo", 0))
	assert.Equal(t, "héllo", truncate("héllo", 10))
}

const nluJSON = `{
  "keywords": [
    {"text": "apple inc", "relevance": 0.98, "count": 12},
    {"text": "nbsp", "relevance": 0.97, "count": 300}
  ],
  "sentiment": {"document": {"score": -0.12, "label": "negative"}},
  "relations": [
    {"type": "locatedAt", "arguments": [{"text": "Apple"}, {"text": "Cupertino"}]},
    {"type": "broken", "arguments": [{"text": "only one"}]}
  ]
}`

func TestParseNLU(t *testing.T) {
	got, err := ParseNLU([]byte(nluJSON))
	require.NoError(t, err)

	assert.Len(t, got.Keywords, 2)
	assert.Equal(t, -0.12, got.Sentiment.DocumentScore)
	assert.Equal(t, []types.Relation{{Type: "locatedAt", Subject: "Apple", Object: "Cupertino"}}, got.Relations)

	_, err = ParseNLU([]byte("{"))
	assert.Error(t, err)
}

func TestDirAnnotator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "AAPL"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL", "2019.json"), []byte(nluJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2018.json"), []byte(nluJSON), 0o644))

	a := &DirAnnotator{Dir: dir}
	ctx := context.Background()

	got, err := a.Annotate(ctx, types.AnnotationRequest{Entity: "AAPL", Year: 2019})
	require.NoError(t, err)
	assert.Equal(t, "negative", got.Sentiment.Label)

	_, err = a.Annotate(ctx, types.AnnotationRequest{Entity: "AAPL", Year: 2018})
	require.NoError(t, err)

	_, err = a.Annotate(ctx, types.AnnotationRequest{Entity: "AAPL", Year: 2017})
	assert.ErrorIs(t, err, types.ErrAnnotation)
}

func TestDirAnnotatorRejectsEscapingEntity(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "private"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "private", "2019.json"), []byte(nluJSON), 0o644))
	dir := filepath.Join(root, "nlu")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	a := &DirAnnotator{Dir: dir}
	_, err := a.Annotate(context.Background(), types.AnnotationRequest{Entity: "../private", Year: 2019})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
