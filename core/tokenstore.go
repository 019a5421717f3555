package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// ErrCredentialMissing means a credential or cached token that must be
// provisioned ahead of time is absent.
var ErrCredentialMissing = errors.New("credential missing")

// TokenStore hides where an OAuth token lives. The run logic only loads
// and saves; disk, memory and SSM supply the storage.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(*oauth2.Token) error
}

// FileTokenStore keeps the token as JSON on disk, owner-readable only.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCredentialMissing, s.Path)
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", s.Path, err)
	}
	return &tok, nil
}

func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, b, 0600)
}

// MemoryTokenStore holds the token in memory, for tests.
type MemoryTokenStore struct {
	Token *oauth2.Token
}

func (s *MemoryTokenStore) Load() (*oauth2.Token, error) {
	if s.Token == nil {
		return nil, ErrCredentialMissing
	}
	return s.Token, nil
}

func (s *MemoryTokenStore) Save(tok *oauth2.Token) error {
	s.Token = tok
	return nil
}
