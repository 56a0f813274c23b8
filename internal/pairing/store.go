package pairing

import (
	"path/filepath"
	"sync"

	"github/qdoge/go-wallet/internal/util"
)

// TopicFilename is the file holding the active relay topic.
const TopicFilename = "pairing.json"

// TopicStore remembers the relay topic across restarts. With an empty
// directory it only keeps the topic in memory.
type TopicStore struct {
	path string

	mu     sync.Mutex
	cached *topicRecord
}

func NewTopicStore(dir string) *TopicStore {
	s := &TopicStore{}
	if dir != "" {
		s.path = filepath.Join(dir, TopicFilename)
	}
	return s
}

func (s *TopicStore) load() (*topicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil || s.path == "" {
		return s.cached, nil
	}

	var record topicRecord
	found, err := util.ReadJSON(s.path, &record)
	if err != nil {
		return nil, err
	}
	if !found || record.Topic == "" {
		return nil, nil //nolint:nilnil // no pairing
	}

	s.cached = &record
	return s.cached, nil
}

func (s *TopicStore) save(record *topicRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := util.WriteJSON(s.path, record, 0o600); err != nil {
			return err
		}
	}

	copied := *record
	s.cached = &copied
	return nil
}

func (s *TopicStore) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = nil
	if s.path == "" {
		return nil
	}

	return util.RemoveFile(s.path)
}
