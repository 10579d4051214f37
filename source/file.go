package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSource reads a file on disk.
// The size is captured when the file is opened.
type FileSource struct {
	file *os.File
	path string
	size int64

	// cleanup runs after the file is closed, e.g. to remove a downloaded temp copy.
	cleanup func() error
}

// OpenFile opens the file at path as a byte source.
func OpenFile(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open file %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &FileSource{
		file: file,
		path: path,
		size: info.Size(),
	}, nil
}

// Path returns the path the source was opened from.
func (s *FileSource) Path() string {
	return s.path
}

// Size returns the file size at the time it was opened.
func (s *FileSource) Size() int64 {
	return s.size
}

// ReadAt reads len(p) bytes from the file starting at offset off.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	err := s.file.Close()
	if s.cleanup != nil {
		if cleanupErr := s.cleanup(); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}
	return err
}
