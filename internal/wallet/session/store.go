package session

import (
	"context"
	"path/filepath"
	"sync"

	"github/qdoge/go-wallet/internal/util"
)

// RecordFilename is the file holding the persisted session record.
const RecordFilename = "session.json"

// FileStore persists the session record as JSON inside a data directory.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, RecordFilename)}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record Record
	found, err := util.ReadJSON(s.path, &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil //nolint:nilnil // nothing persisted
	}

	return &record, nil
}

func (s *FileStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return util.WriteJSON(s.path, record, 0o600)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return util.RemoveFile(s.path)
}

// MemoryStore keeps the record in memory. Used when no data directory is configured.
type MemoryStore struct {
	mu     sync.Mutex
	record *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record == nil {
		return nil, nil //nolint:nilnil // nothing persisted
	}

	copied := *s.record
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.record = &copied
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
