package cartpersist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileSlot struct {
	dir string
}

// NewFileSlot stores every snapshot as <key>.json in dir
func NewFileSlot(dir string) (Slot, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("error creating snapshot dir %s: %w", dir, err)
	}
	return &fileSlot{dir: dir}, nil
}

func (s *fileSlot) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid snapshot key '%s'", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *fileSlot) Read(c context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading snapshot file %s: %w", path, err)
	}
	return data, true, nil
}

func (s *fileSlot) Write(c context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	// write aside and rename so a reader never sees a partial snapshot
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temp file for %s: %w", path, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("error closing temp file for %s: %w", path, err)
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("error renaming snapshot file %s: %w", path, err)
	}
	return nil
}

func (s *fileSlot) Close() error {
	return nil
}
