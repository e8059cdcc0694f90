// Package fs provides the on-disk document mirror.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/schedbot"
)

// partSuffix marks an in-progress download. Files with this suffix are never
// listed and are replaced on the next attempt.
const partSuffix = ".part"

// Ensure Mirror implements schedbot.Mirror at compile time.
var _ schedbot.Mirror = (*Mirror)(nil)

// Mirror stores downloaded documents as flat files in one directory.
// A file's presence is the only record that it was downloaded.
type Mirror struct {
	dir string
	ext string
}

// NewMirror creates a Mirror rooted at dir that lists files ending in ext.
// An empty ext lists every regular file.
func NewMirror(dir, ext string) *Mirror {
	return &Mirror{dir: dir, ext: strings.ToLower(ext)}
}

// Open creates the mirror directory if it does not exist.
func (m *Mirror) Open() error {
	if m.dir == "" {
		return schedbot.Errorf(schedbot.EINVALID, "mirror directory required")
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	return nil
}

// Dir returns the mirror directory.
func (m *Mirror) Dir() string {
	return m.dir
}

// Has reports whether name is already mirrored.
func (m *Mirror) Has(name string) bool {
	if validateName(name) != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(m.dir, name))
	return err == nil && info.Mode().IsRegular()
}

// Save writes a new document. The content is written to a temporary file that
// is renamed into place only after write succeeds.
func (m *Mirror) Save(ctx context.Context, name string, write func(w io.Writer) error) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(m.dir, name+".*"+partSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp, filepath.Join(m.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// List returns the mirrored documents sorted by filename.
func (m *Mirror) List(ctx context.Context) ([]schedbot.MirroredFile, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("read mirror dir: %w", err)
	}

	var files []schedbot.MirroredFile
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasSuffix(name, partSuffix) {
			continue
		}
		if m.ext != "" && !strings.HasSuffix(strings.ToLower(name), m.ext) {
			continue
		}
		files = append(files, schedbot.MirroredFile{
			Filename:  name,
			LocalPath: filepath.Join(m.dir, name),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Filename < files[j].Filename
	})
	return files, nil
}

// validateName rejects anything that is not a plain filename.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return schedbot.Errorf(schedbot.EINVALID, "invalid document name %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator) {
		return schedbot.Errorf(schedbot.EINVALID, "document name %q contains a path separator", name)
	}
	if strings.HasSuffix(name, partSuffix) {
		return schedbot.Errorf(schedbot.EINVALID, "document name %q uses a reserved suffix", name)
	}
	return nil
}
