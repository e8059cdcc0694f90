package fs_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/schedbot"
	"github.com/fwojciec/schedbot/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(s string) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestMirror_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "pdf_files")
		m := fs.NewMirror(dir, ".pdf")

		require.NoError(t, m.Open())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Equal(t, dir, m.Dir())
	})

	t.Run("rejects empty directory", func(t *testing.T) {
		t.Parallel()

		err := fs.NewMirror("", ".pdf").Open()

		assert.Equal(t, schedbot.EINVALID, schedbot.ErrorCode(err))
	})
}

func TestMirror_Save(t *testing.T) {
	t.Parallel()

	t.Run("stores document under its name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := fs.NewMirror(dir, ".pdf")

		require.False(t, m.Has("week1.pdf"))
		require.NoError(t, m.Save(context.Background(), "week1.pdf", writeString("%PDF-1.4")))

		assert.True(t, m.Has("week1.pdf"))
		data, err := os.ReadFile(filepath.Join(dir, "week1.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
	})

	t.Run("failed write leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := fs.NewMirror(dir, ".pdf")
		boom := errors.New("connection reset")

		err := m.Save(context.Background(), "week2.pdf", func(w io.Writer) error {
			_, _ = io.WriteString(w, "%PDF-1.4 partial")
			return boom
		})

		require.ErrorIs(t, err, boom)
		assert.False(t, m.Has("week2.pdf"))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects names that are not plain filenames", func(t *testing.T) {
		t.Parallel()

		m := fs.NewMirror(t.TempDir(), ".pdf")

		for _, name := range []string{"", ".", "..", "../escape.pdf", "sub/file.pdf", `sub\file.pdf`, "x.pdf.part"} {
			err := m.Save(context.Background(), name, writeString("x"))
			assert.Equal(t, schedbot.EINVALID, schedbot.ErrorCode(err), "name %q", name)
			assert.False(t, m.Has(name), "name %q", name)
		}
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		m := fs.NewMirror(t.TempDir(), ".pdf")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := m.Save(ctx, "week3.pdf", writeString("x"))

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, m.Has("week3.pdf"))
	})
}

func TestMirror_List(t *testing.T) {
	t.Parallel()

	t.Run("lists documents sorted by name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := fs.NewMirror(dir, ".pdf")
		ctx := context.Background()

		require.NoError(t, m.Save(ctx, "b.pdf", writeString("b")))
		require.NoError(t, m.Save(ctx, "a.PDF", writeString("a")))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf.123.part"), []byte("x"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0755))

		files, err := m.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, []schedbot.MirroredFile{
			{Filename: "a.PDF", LocalPath: filepath.Join(dir, "a.PDF")},
			{Filename: "b.pdf", LocalPath: filepath.Join(dir, "b.pdf")},
		}, files)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		t.Parallel()

		m := fs.NewMirror(filepath.Join(t.TempDir(), "absent"), ".pdf")

		files, err := m.List(context.Background())

		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
