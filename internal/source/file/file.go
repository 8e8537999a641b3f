// Package file reads vlog lines from local files, optionally gzip-compressed.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/source"
)

// ErrUnsupportedExtension is returned for paths outside the accepted set.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

var extensions = map[string]bool{".vlog": true, ".log": true, ".txt": true}

func init() {
	source.Register("file", func(target string, _ source.Config) (source.Source, error) {
		return New(target)
	})
}

// Source reads a single file.
type Source struct {
	path string
}

// New validates the extension of path and returns a Source for it.
// Accepted: .vlog, .log, .txt, each optionally followed by .gz.
func New(path string) (*Source, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, path)
	}
	return &Source{path: path}, nil
}

// Supported reports whether path carries an accepted extension.
func Supported(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".gz")
	return extensions[filepath.Ext(name)]
}

func (s *Source) Name() string { return s.path }

func (s *Source) Lines(ctx context.Context) ([]model.Line, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return source.ReadLines(ctx, s.path, f)
}
