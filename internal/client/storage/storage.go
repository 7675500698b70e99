// Package storage keeps a vault in a local text file, one canonical secret
// line per row.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/atinyakov/secretkeeper/internal/vault"
)

// DefaultFile is the vault file used when none is configured.
const DefaultFile = "secrets.txt"

// FileStore reads and writes a vault file.
type FileStore struct {
	Path string
	log  *zap.Logger
}

// NewFileStore returns a store for path. A nil logger discards output.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if path == "" {
		path = DefaultFile
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{Path: path, log: log}
}

// Load reads the vault file. A missing file yields an empty vault. Lines that
// cannot be decoded are logged and skipped.
func (fs *FileStore) Load() (*vault.Vault, error) {
	v := vault.New()

	f, err := os.Open(fs.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("open vault file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read vault file: %w", err)
	}

	v.Load(lines, func(i int, err error) {
		fs.log.Warn("skipping unreadable secret",
			zap.String("file", fs.Path),
			zap.Int("line", i+1),
			zap.Error(err),
		)
	})
	fs.log.Debug("vault loaded", zap.String("file", fs.Path), zap.Int("secrets", v.Len()))
	return v, nil
}

// Save replaces the vault file with the current content of v.
func (fs *FileStore) Save(v *vault.Vault) error {
	var b strings.Builder
	for _, line := range v.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := atomic.WriteFile(fs.Path, strings.NewReader(b.String())); err != nil {
		return fmt.Errorf("write vault file: %w", err)
	}
	return nil
}
