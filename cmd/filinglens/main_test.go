package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/filinglens/internal/types"
)

const nluDoc = `{
  "keywords": [{"text": "services", "relevance": 0.8, "count": 7}],
  "sentiment": {"document": {"score": 0.42, "label": "positive"}},
  "relations": [{"type": "locatedAt", "arguments": [{"text": "Apple"}, {"text": "Cupertino"}]}]
}`

func fixtureEnv(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	base := t.TempDir()
	nlu := t.TempDir()
	for _, folder := range []string{"0000320193-18-000145", "0000320193-19-000119"} {
		dir := filepath.Join(base, "AAPL", "10-K", folder)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "full-submission.txt"), []byte("<p>annual report</p>"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(nlu, "2018.json"), []byte(nluDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(nlu, "2019.json"), []byte(nluDoc), 0o644))

	t.Setenv("FILINGLENS_SOURCE_BASE_DIR", base)
	t.Setenv("FILINGLENS_ANNOTATION_ENGINE", "dir")
	t.Setenv("FILINGLENS_ANNOTATION_DIR", nlu)
	t.Setenv("FILINGLENS_LOGGING_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommandJSON(t *testing.T) {
	fixtureEnv(t)
	xlsx := filepath.Join(t.TempDir(), "out.xlsx")

	out, err := run(t, "analyze", "AAPL", "--json", "--year", "2019", "--xlsx", xlsx)
	require.NoError(t, err)

	var a types.Analysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, []types.FiscalYear{2018, 2019}, a.Years)
	assert.Equal(t, types.FiscalYear(2019), a.GraphYear)
	require.NotNil(t, a.Graph)
	assert.Len(t, a.Graph.Edges, 1)

	_, err = os.Stat(xlsx)
	assert.NoError(t, err)
}

func TestAnalyzeCommandReport(t *testing.T) {
	fixtureEnv(t)
	out, err := run(t, "analyze", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL: 2 FISCAL YEARS ANALYSED")
}

func TestAnalyzeCommandNotFound(t *testing.T) {
	fixtureEnv(t)
	_, err := run(t, "analyze", "MSFT")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCorpusCommand(t *testing.T) {
	fixtureEnv(t)
	out, err := run(t, "corpus", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "2 documents resolved, 2 processed, 0 skipped")
	assert.Contains(t, out, "2018  13 chars")
}

func TestEmailRequiresSMTP(t *testing.T) {
	fixtureEnv(t)
	_, err := run(t, "analyze", "AAPL", "--email")
	assert.Error(t, err)
}
