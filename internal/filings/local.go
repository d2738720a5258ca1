package filings

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/shanehull/filinglens/internal/types"
)

// readDir is swapped in tests to simulate unreadable subfolders.
var readDir = os.ReadDir

// LocalSource reads filings persisted on the local filesystem.
type LocalSource struct {
	BaseDir      string
	FilingType   string
	DocumentFile string // empty means every regular file in a subfolder
	Logger       *slog.Logger
}

// NewLocalSource returns a source rooted at baseDir. An empty filingType
// selects DefaultFilingType.
func NewLocalSource(baseDir, filingType, documentFile string) *LocalSource {
	if filingType == "" {
		filingType = DefaultFilingType
	}
	return &LocalSource{BaseDir: baseDir, FilingType: filingType, DocumentFile: documentFile}
}

// Resolve lists the documents stored for entity, sorted by name. entity must
// be a single path element.
func (s *LocalSource) Resolve(ctx context.Context, entity string) ([]types.DocumentRef, error) {
	const op = "filings.local.resolve"
	if err := types.CheckEntity(op, entity); err != nil {
		return nil, err
	}

	root := filepath.Join(s.BaseDir, entity, s.FilingType)
	subfolders, err := readDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.OpError{Op: op, Kind: types.KindNotFound, Path: root}
		}
		return nil, &types.OpError{Op: op, Kind: types.KindRead, Path: root, Err: err}
	}

	var refs []types.DocumentRef
	for _, sub := range subfolders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !sub.IsDir() {
			continue
		}
		dir := filepath.Join(root, sub.Name())

		if s.DocumentFile != "" {
			p := filepath.Join(dir, s.DocumentFile)
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				refs = append(refs, types.DocumentRef{Path: p, Name: path.Join(sub.Name(), s.DocumentFile)})
			}
			continue
		}

		files, err := readDir(dir)
		if err != nil {
			s.logger().WarnContext(ctx, "skipping unreadable filing folder", "entity", entity, "folder", sub.Name(), "error", err)
			continue
		}
		for _, f := range files {
			if f.Type().IsRegular() {
				refs = append(refs, types.DocumentRef{
					Path: filepath.Join(dir, f.Name()),
					Name: path.Join(sub.Name(), f.Name()),
				})
			}
		}
	}

	if len(refs) == 0 {
		return nil, &types.OpError{Op: op, Kind: types.KindNotFound, Path: root, Err: errors.New("no documents")}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func (s *LocalSource) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Read returns the raw bytes of ref.
func (s *LocalSource) Read(_ context.Context, ref types.DocumentRef) ([]byte, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		return nil, &types.OpError{Op: "filings.local.read", Kind: types.KindRead, Path: ref.Path, Err: err}
	}
	return data, nil
}
