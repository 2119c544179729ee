package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/pkg/errors"
)

// FileStore keeps options in a JSON file shared with the add-on platform. Keys it does
// not know about are preserved on write.
type FileStore struct {
	Path string
	mu   sync.RWMutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) GetOptions() (model.Options, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := s.readUnsafe()
	if err != nil {
		return model.Options{}, err
	}
	return optionsFromRaw(raw), nil
}

func (s *FileStore) SaveAPIKey(key string) error {
	return s.update(model.OptionGrocyAPIKey, key)
}

func (s *FileStore) SaveResolvedURL(url string) error {
	return s.update(model.OptionResolvedGrocyURL, url)
}

func (s *FileStore) update(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readUnsafe()
	if err != nil {
		return err
	}
	raw[key] = value
	return s.writeUnsafe(raw)
}

func (s *FileStore) readUnsafe() (map[string]any, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read options [%s]", s.Path)
	}
	if len(data) == 0 {
		return make(map[string]any), nil
	}

	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse options [%s]", s.Path)
	}
	return raw, nil
}

func (s *FileStore) writeUnsafe(raw map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal options")
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write options")
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return errors.Wrap(err, "failed to replace options")
	}
	return nil
}

func optionsFromRaw(raw map[string]any) model.Options {
	var opts model.Options
	if v, ok := raw[model.OptionGrocyAPIKey].(string); ok {
		opts.GrocyAPIKey = v
	}
	if v, ok := raw[model.OptionResolvedGrocyURL].(string); ok {
		opts.ResolvedGrocyURL = v
	}
	return opts
}
