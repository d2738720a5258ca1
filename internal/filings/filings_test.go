package filings

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shanehull/filinglens/internal/types"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		path string
		want types.FiscalYear
	}{
		{"0000320193-94-000016/full-submission.txt", 1994},
		{"0000320193-93-000016/full-submission.txt", 2093},
		{"0000320193-05-000016/full-submission.txt", 2005},
		{"0000320193-99-000016/full-submission.txt", 1999},
		{"a-12-b-13-c", 2012},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ExtractYear(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractYearMalformed(t *testing.T) {
	_, err := ExtractYear("filing/full-submission.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedPath)
}

func TestCleanMarkup(t *testing.T) {
	assert.Equal(t, "ace", CleanMarkup("a<b>c<d/>e"))
	assert.Equal(t, "no tags &nbsp; here", CleanMarkup("no tags &nbsp; here"))
	assert.Equal(t, "", CleanMarkup(""))

	once := CleanMarkup("<html><body>Revenue <b>grew</b> 5%</body></html>")
	assert.Equal(t, "Revenue grew 5%", once)
	assert.Equal(t, once, CleanMarkup(once))
}

func TestHTMLCleaner(t *testing.T) {
	got := HTMLCleaner{}.Clean("<p>net&nbsp;sales</p><script>alert(1)</script><style>p{}</style>rose")
	assert.Equal(t, "net salesrose", got)
	assert.NotContains(t, got, "nbsp")
}

func TestNewCleaner(t *testing.T) {
	c, err := NewCleaner("")
	require.NoError(t, err)
	assert.Equal(t, "ace", c.Clean("a<b>c<d/>e"))

	_, err = NewCleaner("html")
	require.NoError(t, err)

	_, err = NewCleaner("regex")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestCorpusOrdering(t *testing.T) {
	c := NewCorpus()
	c.Set(2019, "c")
	c.Set(1995, "a")
	c.Set(2003, "b")
	c.Set(2019, "d")

	assert.Equal(t, []types.FiscalYear{1995, 2003, 2019}, c.Years())
	assert.Equal(t, []Entry{{1995, "a"}, {2003, "b"}, {2019, "d"}}, c.Entries())
	assert.Equal(t, map[types.FiscalYear]int{1995: 1, 2003: 1, 2019: 1}, c.Sizes())

	sub := c.Subset([]types.FiscalYear{2019, 1995, 2000})
	assert.Equal(t, []types.FiscalYear{1995, 2019}, sub.Years())
}

func writeFiling(t *testing.T, base, entity, folder, body string) {
	t.Helper()
	dir := filepath.Join(base, entity, DefaultFilingType, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDocumentFile), []byte(body), 0o644))
}

func TestLocalSourceResolve(t *testing.T) {
	base := t.TempDir()
	writeFiling(t, base, "AAPL", "0000320193-19-000119", "x")
	writeFiling(t, base, "AAPL", "0000320193-18-000145", "y")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "AAPL", DefaultFilingType, "empty"), 0o755))

	src := NewLocalSource(base, "", DefaultDocumentFile)
	refs, err := src.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "0000320193-18-000145/full-submission.txt", refs[0].Name)
	assert.Equal(t, "0000320193-19-000119/full-submission.txt", refs[1].Name)

	data, err := src.Read(context.Background(), refs[0])
	require.NoError(t, err)
	assert.Equal(t, "y", string(data))
}

func TestLocalSourceNotFound(t *testing.T) {
	src := NewLocalSource(t.TempDir(), "", DefaultDocumentFile)

	_, err := src.Resolve(context.Background(), "MSFT")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = src.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = src.Read(context.Background(), types.DocumentRef{Path: "/does/not/exist"})
	assert.ErrorIs(t, err, types.ErrRead)
}

func TestLocalSourceRejectsEscapingEntity(t *testing.T) {
	root := t.TempDir()
	writeFiling(t, root, "private", "0000320193-19-000119", "SECRET")
	base := filepath.Join(root, "filings")
	require.NoError(t, os.MkdirAll(base, 0o755))

	src := NewLocalSource(base, "", DefaultDocumentFile)
	for _, entity := range []string{"../private", "..", "AAPL/../../private", filepath.Join(root, "private")} {
		_, err := src.Resolve(context.Background(), entity)
		assert.ErrorIs(t, err, types.ErrInvalidInput, entity)
	}

	corpus, _, err := NewBuilder(src, nil, nil).Build(context.Background(), "../private")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	assert.Nil(t, corpus)
}

func TestLocalSourceLogsUnreadableFolder(t *testing.T) {
	base := t.TempDir()
	writeFiling(t, base, "AAPL", "0000320193-19-000119", "x")
	writeFiling(t, base, "AAPL", "broken", "y")

	orig := readDir
	t.Cleanup(func() { readDir = orig })
	readDir = func(name string) ([]os.DirEntry, error) {
		if filepath.Base(name) == "broken" {
			return nil, errors.New("permission denied")
		}
		return orig(name)
	}

	var logs bytes.Buffer
	src := NewLocalSource(base, "", "")
	src.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	refs, err := src.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "0000320193-19-000119/full-submission.txt", refs[0].Name)
	assert.Contains(t, logs.String(), "skipping unreadable filing folder")
	assert.Contains(t, logs.String(), `"folder":"broken"`)
}

func TestDocumentName(t *testing.T) {
	name, ok := documentName("0000320193-19-000119/full-submission.txt", DefaultDocumentFile)
	assert.True(t, ok)
	assert.Equal(t, "0000320193-19-000119/full-submission.txt", name)

	_, ok = documentName("0000320193-19-000119/exhibit.htm", DefaultDocumentFile)
	assert.False(t, ok)

	_, ok = documentName("full-submission.txt", "")
	assert.False(t, ok)

	_, ok = documentName("a/b/c.txt", "")
	assert.False(t, ok)
}

func TestBuilderBuild(t *testing.T) {
	base := t.TempDir()
	writeFiling(t, base, "AAPL", "0000320193-18-000145", "<p>eighteen</p>")
	writeFiling(t, base, "AAPL", "0000320193-10-000001", "first")
	writeFiling(t, base, "AAPL", "0000320193-10-000002", "<i>second</i>")
	writeFiling(t, base, "AAPL", "undated", "lost")

	b := NewBuilder(NewLocalSource(base, "", DefaultDocumentFile), nil, nil)
	corpus, report, err := b.Build(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, []types.FiscalYear{2010, 2018}, corpus.Years())
	text, _ := corpus.Get(2010)
	assert.Equal(t, "second", text)
	text, _ = corpus.Get(2018)
	assert.Equal(t, "eighteen", text)

	assert.Equal(t, 4, report.Resolved)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, []types.FiscalYear{2010}, report.Overwritten)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, types.KindMalformedPath, report.Skipped[0].Kind)
}

func TestBuilderNotFound(t *testing.T) {
	b := NewBuilder(NewLocalSource(t.TempDir(), "", ""), nil, nil)
	_, _, err := b.Build(context.Background(), "NOPE")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

type flakySource struct {
	refs []types.DocumentRef
	fail map[string]bool
}

func (f *flakySource) Resolve(context.Context, string) ([]types.DocumentRef, error) {
	return f.refs, nil
}

func (f *flakySource) Read(_ context.Context, ref types.DocumentRef) ([]byte, error) {
	if f.fail[ref.Name] {
		return nil, &types.OpError{Op: "test.read", Kind: types.KindRead, Path: ref.Path, Err: errors.New("boom")}
	}
	return []byte("<b>" + ref.Name + "</b>"), nil
}

func TestBuilderSkipsUnreadable(t *testing.T) {
	src := &flakySource{
		refs: []types.DocumentRef{{Name: "x-01-a"}, {Name: "x-02-b"}},
		fail: map[string]bool{"x-01-a": true},
	}
	corpus, report, err := NewBuilder(src, nil, nil).Build(context.Background(), "E")
	require.NoError(t, err)
	assert.Equal(t, []types.FiscalYear{2002}, corpus.Years())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, types.KindRead, report.Skipped[0].Kind)
}

func TestBuilderAllSkippedIsEmpty(t *testing.T) {
	src := &flakySource{
		refs: []types.DocumentRef{{Name: "x-01-a"}},
		fail: map[string]bool{"x-01-a": true},
	}
	corpus, _, err := NewBuilder(src, nil, nil).Build(context.Background(), "E")
	require.NoError(t, err)
	assert.Equal(t, 0, corpus.Len())
}

func TestBuilderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &flakySource{refs: []types.DocumentRef{{Name: "x-01-a"}}}
	corpus, _, err := NewBuilder(src, nil, nil).Build(ctx, "E")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, corpus.Len())
}
