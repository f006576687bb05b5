package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/nice/internal/contracts"
)

// FileStore keeps evidence packets as pretty-printed JSON files under
// a day-partitioned directory tree: {dir}/{YYYYMMDD}/{ticker}_{HHMMSS}.json.
// Append-only: Put refuses to replace an existing packet.
type FileStore struct {
	dir string
}

// NewFileStore creates the store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Put writes one packet. Existing keys are never overwritten.
func (s *FileStore) Put(ctx context.Context, key string, packet *contracts.EvidencePacket) error {
	path := s.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create daily evidence dir: %w", err)
	}

	data, err := json.MarshalIndent(packet, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evidence packet: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create evidence file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write evidence file %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a packet is already stored under key
func (s *FileStore) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
