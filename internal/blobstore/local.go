package blobstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"
)

// LocalStore writes blobs under <root>/<folder>/<millis>_<rand>_<name>
// and builds URLs from publicURL, where the web layer serves the root
// directory statically.
type LocalStore struct {
	root      string
	publicURL string
}

func NewLocalStore(root, publicURL string) *LocalStore {
	return &LocalStore{root: root, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, folder, filename string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("blobstore: empty upload")
	}
	folder = sanitizeSegment(folder)
	filename = sanitizeSegment(filename)
	if folder == "" || filename == "" {
		return "", errors.New("blobstore: bad folder or filename")
	}

	key := fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), random.String(4, random.Lowercase), filename)
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "blobstore: create folder")
	}
	if err := os.WriteFile(filepath.Join(dir, key), data, 0644); err != nil {
		return "", errors.Wrap(err, "blobstore: write blob")
	}
	return s.publicURL + "/" + path.Join("public", folder, key), nil
}

// sanitizeSegment strips path separators so uploads cannot escape the
// blob root.
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "..", "_")
	return s
}
