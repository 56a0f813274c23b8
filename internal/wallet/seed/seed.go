package seed

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github/qdoge/go-wallet/internal/wallet/identity"
	"github/qdoge/go-wallet/internal/walleterrors"
)

// Length is the number of letters in a seed.
const Length = 55

// SubseedSize is the size of the key material derived from a seed.
const SubseedSize = 32

// Seed holds the 55 lowercase letters of a local secret in memory.
type Seed struct {
	mu      sync.RWMutex
	letters []byte
}

// Parse validates s and returns a Seed. Surrounding whitespace is ignored,
// anything else that is not exactly 55 letters a-z is rejected.
func Parse(s string) (*Seed, error) {
	s = strings.TrimSpace(s)
	if len(s) != Length {
		return nil, walleterrors.Wrap(errors.Errorf("got %d characters", len(s)), walleterrors.CodeMalformedSecret, "seed must be 55 lowercase letters")
	}

	letters := make([]byte, Length)
	for i := 0; i < Length; i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return nil, walleterrors.Wrap(errors.Errorf("character at position %d", i), walleterrors.CodeMalformedSecret, "seed must be 55 lowercase letters")
		}
		letters[i] = c
	}

	return &Seed{letters: letters}, nil
}

// Subseed returns K12 over the seed letters mapped to 0..25.
func (s *Seed) Subseed() ([SubseedSize]byte, error) {
	var subseed [SubseedSize]byte

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.letters == nil {
		return subseed, walleterrors.ErrMissingSecret
	}

	values := make([]byte, Length)
	for i, c := range s.letters {
		values[i] = c - 'a'
	}
	identity.Sum(subseed[:], values)

	for i := range values {
		values[i] = 0
	}

	return subseed, nil
}

// Reveal returns the seed letters. Callers must not log the result.
func (s *Seed) Reveal() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return string(s.letters)
}

// Clone returns an independent copy that can be cleared separately.
func (s *Seed) Clone() *Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.letters == nil {
		return &Seed{}
	}

	letters := make([]byte, len(s.letters))
	copy(letters, s.letters)
	return &Seed{letters: letters}
}

// IsCleared reports whether Clear has been called.
func (s *Seed) IsCleared() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.letters == nil
}

// Clear clears the seed from memory
func (s *Seed) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.letters != nil {
		for i := range s.letters {
			s.letters[i] = 0
		}
		s.letters = nil
	}
}

// String never prints the secret.
func (s *Seed) String() string {
	return "[redacted seed]"
}
