/*
Package history caches annotation results so repeated runs over an unchanged
filing do not call the annotation engine again.
*/
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/shanehull/filinglens/internal/types"
)

const (
	historyFileName = "annotation_history.json"
	historyDirName  = "filinglens"
)

// Key identifies one annotated filing text.
type Key struct {
	Entity string
	Year   types.FiscalYear
	Digest string
}

// KeyFor derives the cache key for text annotated for entity and year.
func KeyFor(entity string, year types.FiscalYear, text string) Key {
	sum := sha256.Sum256([]byte(text))
	return Key{Entity: entity, Year: year, Digest: hex.EncodeToString(sum[:])}
}

func (k Key) String() string {
	return k.Entity + "|" + strconv.Itoa(int(k.Year)) + "|" + k.Digest
}

// Store persists annotation results by key.
type Store interface {
	Get(ctx context.Context, key Key) (types.AnnotationResult, bool, error)
	Put(ctx context.Context, key Key, result types.AnnotationResult) error
}

type entry struct {
	StoredAt time.Time              `json:"stored_at"`
	Result   types.AnnotationResult `json:"result"`
}

type History struct {
	Entries map[string]entry `json:"entries"`
}

// Manager is a Store backed by a single JSON file. Entries older than ttl are
// treated as missing; a zero ttl keeps entries forever.
type Manager struct {
	history         History
	mutex           sync.Mutex
	historyFilePath string
	ttl             time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewManager loads the history at filePath, defaulting to a file in the
// system temp directory when filePath is empty.
func NewManager(filePath string, ttl time.Duration, logger *slog.Logger) (*Manager, error) {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), historyDirName, historyFileName)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory %s: %w", filepath.Dir(filePath), err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		historyFilePath: filePath,
		ttl:             ttl,
		logger:          logger.With("history_file", filePath),
		now:             time.Now,
	}

	m.loadHistory()
	return m, nil
}

func (m *Manager) loadHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.history = History{Entries: make(map[string]entry)}

	data, err := os.ReadFile(m.historyFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.logger.Info("history file not found, starting fresh")
			return
		}
		m.logger.Warn("error reading history file, starting fresh", "error", err)
		return
	}

	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		m.logger.Warn("error unmarshalling history, starting fresh", "error", err)
		return
	}
	if loaded.Entries != nil {
		m.history = loaded
	}
	m.logger.Info("loaded annotation history", "entries", len(m.history.Entries))
}

func (m *Manager) saveHistory() error {
	data, err := json.MarshalIndent(m.history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(m.historyFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", m.historyFilePath, err)
	}
	return nil
}

func (m *Manager) Get(_ context.Context, key Key) (types.AnnotationResult, bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.history.Entries[key.String()]
	if !ok {
		return types.AnnotationResult{}, false, nil
	}
	if m.ttl > 0 && m.now().Sub(e.StoredAt) > m.ttl {
		return types.AnnotationResult{}, false, nil
	}
	return e.Result, true, nil
}

func (m *Manager) Put(_ context.Context, key Key, result types.AnnotationResult) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.history.Entries[key.String()] = entry{StoredAt: m.now().UTC(), Result: result}
	return m.saveHistory()
}

func (m *Manager) HistoryFilePath() string {
	return m.historyFilePath
}
