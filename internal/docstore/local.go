package docstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore inspects per-employee folders under a root directory on disk.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed document store.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) DocumentStatus(_ context.Context, folder string) (map[string]string, error) {
	if folder == "" {
		return allNotFound(), nil
	}

	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		if os.IsNotExist(err) {
			return allNotFound(), nil
		}
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	return classify(files), nil
}

func (s *LocalStore) ListDocuments(_ context.Context, folder string) ([]string, error) {
	if folder == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(filepath.Join(s.root, folder))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var docs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			docs = append(docs, e.Name())
		}
	}
	return docs, nil
}

func containsAny(name string, substrings []string) bool {
	lower := strings.ToLower(name)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
