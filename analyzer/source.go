package analyzer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/beanload/ast"
	"github.com/robinvdvleuten/beanload/parser"
)

// Source gives the analyzer access to ledger files. Parse must return an
// error matching fs.ErrNotExist for a missing file, so the analyzer can tell
// a missing include apart from a broken one.
type Source interface {
	Parse(ctx context.Context, path string) (*ast.File, error)
	Glob(pattern string) ([]string, error)
}

// FileSource reads ledgers from the local filesystem.
type FileSource struct {
	opts []parser.Option
}

// NewFileSource returns a Source backed by the operating system. The parser
// options are applied to every file.
func NewFileSource(opts ...parser.Option) *FileSource {
	return &FileSource{opts: opts}
}

// Parse reads and parses the file at path.
func (s *FileSource) Parse(ctx context.Context, path string) (*ast.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parser.ParseBytes(ctx, path, data, s.opts...)
}

// Glob expands pattern with filepath.Glob.
func (s *FileSource) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// FSSource reads ledgers from an fs.FS. Paths are slash-separated and
// relative to the root of the file system.
type FSSource struct {
	fsys fs.FS
	opts []parser.Option
}

// NewFSSource returns a Source backed by fsys.
func NewFSSource(fsys fs.FS, opts ...parser.Option) *FSSource {
	return &FSSource{fsys: fsys, opts: opts}
}

// Parse reads and parses the file at path.
func (s *FSSource) Parse(ctx context.Context, path string) (*ast.File, error) {
	data, err := fs.ReadFile(s.fsys, filepath.ToSlash(path))
	if err != nil {
		return nil, err
	}
	return parser.ParseBytes(ctx, path, data, s.opts...)
}

// Glob expands pattern with fs.Glob.
func (s *FSSource) Glob(pattern string) ([]string, error) {
	return fs.Glob(s.fsys, filepath.ToSlash(pattern))
}
