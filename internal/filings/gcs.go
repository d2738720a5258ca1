package filings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/shanehull/filinglens/internal/types"
)

// GCSSource reads filings persisted in a Cloud Storage bucket using the same
// {prefix}/{entity}/{filingType}/{subfolder}/{documentFile} layout.
type GCSSource struct {
	Client       *storage.Client
	Bucket       string
	Prefix       string
	FilingType   string
	DocumentFile string
}

// NewGCSSource creates a storage client using application default credentials.
func NewGCSSource(ctx context.Context, bucket, prefix, filingType, documentFile string) (*GCSSource, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if filingType == "" {
		filingType = DefaultFilingType
	}
	return &GCSSource{
		Client:       client,
		Bucket:       bucket,
		Prefix:       strings.Trim(prefix, "/"),
		FilingType:   filingType,
		DocumentFile: documentFile,
	}, nil
}

// Close releases the storage client.
func (s *GCSSource) Close() error {
	return s.Client.Close()
}

func (s *GCSSource) entityPrefix(entity string) string {
	return path.Join(s.Prefix, entity, s.FilingType) + "/"
}

// Resolve lists the {subfolder}/{file} objects under the entity prefix, sorted by name.
func (s *GCSSource) Resolve(ctx context.Context, entity string) ([]types.DocumentRef, error) {
	const op = "filings.gcs.resolve"
	if err := types.CheckEntity(op, entity); err != nil {
		return nil, err
	}

	prefix := s.entityPrefix(entity)
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var refs []types.DocumentRef
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &types.OpError{Op: op, Kind: types.KindRead, Path: prefix, Err: err}
		}
		if name, ok := documentName(strings.TrimPrefix(attrs.Name, prefix), s.DocumentFile); ok {
			refs = append(refs, types.DocumentRef{Path: attrs.Name, Name: name})
		}
	}

	if len(refs) == 0 {
		return nil, &types.OpError{Op: op, Kind: types.KindNotFound, Path: "gs://" + s.Bucket + "/" + prefix}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Read downloads the object behind ref.
func (s *GCSSource) Read(ctx context.Context, ref types.DocumentRef) ([]byte, error) {
	const op = "filings.gcs.read"
	r, err := s.Client.Bucket(s.Bucket).Object(ref.Path).NewReader(ctx)
	if err != nil {
		return nil, &types.OpError{Op: op, Kind: types.KindRead, Path: ref.Path, Err: err}
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &types.OpError{Op: op, Kind: types.KindRead, Path: ref.Path, Err: err}
	}
	return data, nil
}

// documentName accepts object names of the form {subfolder}/{file} relative to
// the entity prefix.
func documentName(rel, documentFile string) (string, bool) {
	parts := strings.Split(rel, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	if documentFile != "" && parts[1] != documentFile {
		return "", false
	}
	return rel, true
}
