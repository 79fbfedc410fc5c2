package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DiskStore writes capture artifacts under a local directory and hands back
// a URL built from the configured public base. The backend resolves the URL
// on its own; this process never serves the files itself.
type DiskStore struct {
	dir           string
	publicBaseURL string
	log           zerolog.Logger
}

func NewDiskStore(dir string, publicBaseURL string, log zerolog.Logger) *DiskStore {
	return &DiskStore{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

func (s *DiskStore) Put(ctx context.Context, name string, mime string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty artifact %q", name)
	}
	name = filepath.Base(name)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	url := s.publicBaseURL + "/" + name
	s.log.Debug().Str("path", path).Str("mime", mime).Int("bytes", len(data)).Msg("artifact stored")
	return url, nil
}
