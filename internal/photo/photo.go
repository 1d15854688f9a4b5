// README: Device-local photo store keyed by session id.
package photo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store holds the photo bytes for a session. The session store only tracks
// the has-photo flag and the URI returned from Put.
type Store interface {
	Put(sessionID string, image []byte) (string, error)
	Get(sessionID string) (string, bool)
}

// DirStore keeps photos as files under a directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("photo store dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".jpg")
}

func (s *DirStore) Put(sessionID string, image []byte) (string, error) {
	p := s.path(sessionID)
	if err := os.WriteFile(p, image, 0o644); err != nil {
		return "", fmt.Errorf("photo store write: %w", err)
	}
	return "file://" + p, nil
}

func (s *DirStore) Get(sessionID string) (string, bool) {
	p := s.path(sessionID)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return "file://" + p, true
}
