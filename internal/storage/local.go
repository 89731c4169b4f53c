// Package storage contains the blob store uploaded files are written to. Every blob
// lives directly under the upload root and is publicly reachable under the base URL
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrForeignURL  = errors.New("url isn't served by this store")
	ErrOutsideRoot = errors.New("path is outside of the upload root")
	ErrInvalidName = errors.New("invalid file name")
)

type Local struct {
	fs      afero.Fs
	root    string
	baseURL string
}

// NewLocal returns a blob store rooted at root. The directory has to exist already,
// it's provisioned together with the web server that serves baseURL
func NewLocal(fs afero.Fs, root, baseURL string) (*Local, error) {
	root = strings.TrimSpace(root)
	baseURL = strings.TrimSpace(baseURL)

	if root == "" {
		return nil, errors.New("no upload root provided")
	}

	if baseURL == "" {
		return nil, errors.New("no public base url provided")
	}

	// Records store absolute paths, a relative root would tie them to the working directory
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root, %w", err)
	}

	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload root, %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("upload root %s is not a directory", root)
	}

	if !strings.HasSuffix(root, "/") {
		root += "/"
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Local{
		fs:      fs,
		root:    root,
		baseURL: baseURL,
	}, nil
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) BaseURL() string {
	return l.baseURL
}

// Path returns the absolute path of a blob called name
func (l *Local) Path(name string) string {
	return l.root + name
}

// Name is the inverse of Path
func (l *Local) Name(p string) (string, error) {
	name, ok := strings.CutPrefix(p, l.root)
	if !ok || validName(name) != nil {
		return "", ErrOutsideRoot
	}

	return name, nil
}

// URL maps a blob path to its public URL. Only the leading root is substituted, so
// the root showing up again inside a file name doesn't matter
func (l *Local) URL(p string) (string, error) {
	name, err := l.Name(p)
	if err != nil {
		return "", err
	}

	return l.baseURL + name, nil
}

// PathFor maps a public URL back to the blob path
func (l *Local) PathFor(url string) (string, error) {
	name, ok := strings.CutPrefix(url, l.baseURL)
	if !ok {
		return "", ErrForeignURL
	}

	if err := validName(name); err != nil {
		return "", err
	}

	return l.root + name, nil
}

// Write stores r under name and returns the absolute path and the amount of bytes
// written. A partially written file is removed
func (l *Local) Write(name string, r io.Reader) (string, int64, error) {
	if err := validName(name); err != nil {
		return "", 0, err
	}

	p := l.Path(name)

	f, err := l.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file, %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		l.fs.Remove(p)
		return "", 0, fmt.Errorf("failed to write file, %w", err)
	}

	if err := f.Close(); err != nil {
		l.fs.Remove(p)
		return "", 0, fmt.Errorf("failed to close file, %w", err)
	}

	return p, n, nil
}

func (l *Local) Stat(p string) (os.FileInfo, error) {
	return l.fs.Stat(p)
}

func (l *Local) Open(p string) (afero.File, error) {
	return l.fs.Open(p)
}

func (l *Local) Remove(p string) error {
	if _, err := l.Name(p); err != nil {
		return err
	}

	return l.fs.Remove(p)
}

// List returns every entry directly under the upload root
func (l *Local) List() ([]os.FileInfo, error) {
	return afero.ReadDir(l.fs, l.root)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}

	return nil
}
