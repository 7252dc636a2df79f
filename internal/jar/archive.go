package jar

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mholt/archives"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Open reads the archive at path.
func Open(ctx context.Context, path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := extract(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return m, nil
}

// Read reads an archive held in memory.
func Read(ctx context.Context, data []byte) (*Module, error) {
	return extract(ctx, bytes.NewReader(data))
}

func extract(ctx context.Context, r io.Reader) (*Module, error) {
	m := New()

	err := archives.Zip{}.Extract(ctx, r, func(_ context.Context, info archives.FileInfo) error {
		name := strings.TrimPrefix(info.NameInArchive, "/")

		e := &Entry{Name: name, ModTime: info.ModTime(), Dir: info.IsDir()}
		if e.Dir {
			if !strings.HasSuffix(e.Name, "/") {
				e.Name += "/"
			}

			m.Add(e)

			return nil
		}

		f, err := info.Open()
		if err != nil {
			return fmt.Errorf("opening entry %s: %w", name, err)
		}
		defer f.Close()

		if e.Data, err = io.ReadAll(f); err != nil {
			return fmt.Errorf("reading entry %s: %w", name, err)
		}

		m.Add(e)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// WriteTo archives the module to w.
func (m *Module) WriteTo(ctx context.Context, w io.Writer) error {
	files := make([]archives.FileInfo, 0, len(m.entries))

	for _, e := range m.entries {
		info := entryInfo{e: e}
		files = append(files, archives.FileInfo{
			FileInfo:      info,
			NameInArchive: strings.TrimSuffix(e.Name, "/"),
			Open: func() (fs.File, error) {
				return &entryFile{Reader: bytes.NewReader(e.Data), info: info}, nil
			},
		})
	}

	return archives.Zip{Compression: zip.Deflate}.Archive(ctx, w, files)
}

// Write archives the module to path. The archive is produced in a
// temporary file next to path and renamed into place once complete.
func Write(ctx context.Context, path string, m *Module) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := m.WriteTo(ctx, tmp); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming into %s: %w", path, err)
	}

	committed = true

	return nil
}

// entryInfo adapts an Entry to fs.FileInfo.
type entryInfo struct {
	e *Entry
}

func (i entryInfo) Name() string       { return filepath.Base(strings.TrimSuffix(i.e.Name, "/")) }
func (i entryInfo) Size() int64        { return int64(len(i.e.Data)) }
func (i entryInfo) ModTime() time.Time { return i.e.ModTime }
func (i entryInfo) IsDir() bool        { return i.e.Dir }
func (i entryInfo) Sys() any           { return nil }

func (i entryInfo) Mode() fs.FileMode {
	if i.e.Dir {
		return fs.ModeDir | dirPerm
	}

	return filePerm
}

// entryFile adapts entry bytes to fs.File.
type entryFile struct {
	*bytes.Reader
	info entryInfo
}

func (f *entryFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *entryFile) Close() error               { return nil }
