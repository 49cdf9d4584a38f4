package chat

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a file selected for batch upload
type File struct {
	Name string
	Data []byte
}

// LoadFile reads a file from disk so it can be selected for upload
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return File{Name: filepath.Base(path), Data: data}, nil
}
