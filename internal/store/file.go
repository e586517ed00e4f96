package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dppkit/passport-cli/internal/passport"
)

// FileStore keeps one pretty-printed JSON document per record in a flat
// directory, named <id>.json.
type FileStore struct {
	dir string
}

// NewFile creates a FileStore rooted at dir, creating it if needed.
func NewFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "store: create dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, rec *passport.Record) (string, error) {
	if err := checkID(rec.ID); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "store: marshal record")
	}
	path := filepath.Join(s.dir, rec.ID+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", eris.Wrapf(err, "store: write %s", path)
	}
	return path, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*passport.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, id+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: read %s", path)
	}
	var rec passport.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(err, "store: parse %s", path)
	}
	return &rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read dir %s", s.dir)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		if passport.ValidID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) Close() error {
	return nil
}
