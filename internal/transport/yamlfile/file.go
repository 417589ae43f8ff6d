// Package yamlfile keeps the user table in a local YAML document: a list
// of mappings whose keys are the table header. The whole file is rewritten
// on every change through a temp file and rename, so a crash never leaves
// a half-written table behind.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"gopkg.in/yaml.v3"
)

type fileRow struct {
	Username string `yaml:"username"`
	Name     string `yaml:"nombre"`
	Surname  string `yaml:"apellido"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"rol"`
}

type File struct {
	path string
	mu   sync.Mutex
}

// New returns a transport for path. The file does not have to exist; it is
// created on the first write.
func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) read() ([]fileRow, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var rows []fileRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return rows, nil
}

func (f *File) write(rows []fileRow) error {
	if rows == nil {
		rows = []fileRow{}
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) ReadAllRows(ctx context.Context) ([]directory.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.read()
	if err != nil {
		return nil, err
	}
	out := make([]directory.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, directory.Row(r))
	}
	return out, nil
}

func (f *File) AppendRow(ctx context.Context, r directory.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.read()
	if err != nil {
		return err
	}
	return f.write(append(rows, fileRow(r)))
}

func (f *File) FindRow(ctx context.Context, key string) (directory.RowHandle, bool, error) {
	if err := ctx.Err(); err != nil {
		return directory.RowHandle{}, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.read()
	if err != nil {
		return directory.RowHandle{}, false, err
	}
	if i := indexOf(rows, key); i >= 0 {
		return directory.RowHandle{ID: int64(i), Key: key}, true, nil
	}
	return directory.RowHandle{}, false, nil
}

// DeleteRow removes the row at h.ID when it still holds h.Key, otherwise
// the first row holding h.Key. The file may have been edited by hand in
// between.
func (f *File) DeleteRow(ctx context.Context, h directory.RowHandle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rows, err := f.read()
	if err != nil {
		return err
	}

	i := int(h.ID)
	if i < 0 || i >= len(rows) || common.Normalize(rows[i].Username) != h.Key {
		i = indexOf(rows, h.Key)
	}
	if i < 0 {
		return common.ErrUserNotFound
	}
	return f.write(append(rows[:i], rows[i+1:]...))
}

func (f *File) Close() error { return nil }

func indexOf(rows []fileRow, key string) int {
	for i, r := range rows {
		if common.Normalize(r.Username) == key {
			return i
		}
	}
	return -1
}
