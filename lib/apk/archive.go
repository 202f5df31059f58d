// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package apk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
)

const (
	// PrimaryBytecode is the entry name of an archive's dex bytecode.
	PrimaryBytecode = "classes.dex"

	// ArtifactPrefix is the directory under which compiled artifacts
	// are stored inside an odexed archive.
	ArtifactPrefix = "oat/"
)

// ErrInvalidArchive indicates that a byte stream is not a well-formed
// zip container, or that an output archive could not be written.
var ErrInvalidArchive = errors.New("invalid archive")

// ArtifactPath returns the entry name for a compiled artifact file:
// "oat/<first character of filename>/<filename>". The single-character
// shard mirrors the on-device artifact layout.
//
//	ArtifactPath("app.oat")  → "oat/a/app.oat"
//	ArtifactPath("app.vdex") → "oat/a/app.vdex"
func ArtifactPath(filename string) string {
	first, size := utf8.DecodeRuneInString(filename)
	if size == 0 {
		return ArtifactPrefix + filename
	}
	return ArtifactPrefix + string(first) + "/" + filename
}

// IsArtifact reports whether an entry name lies under ArtifactPrefix.
func IsArtifact(name string) bool {
	return strings.HasPrefix(name, ArtifactPrefix)
}

// Entry is one named member of an archive. Entries are only valid
// while the Reader that produced them is open.
type Entry struct {
	file *zip.File
}

// Name returns the entry's path within the archive.
func (e Entry) Name() string { return e.file.Name }

// Method returns the compression method recorded in the entry header.
func (e Entry) Method() Method { return Method(e.file.Method) }

// CRC32 returns the checksum of the uncompressed payload.
func (e Entry) CRC32() uint32 { return e.file.CRC32 }

// Size returns the uncompressed payload size in bytes.
func (e Entry) Size() uint64 { return e.file.UncompressedSize64 }

// CompressedSize returns the stored payload size in bytes.
func (e Entry) CompressedSize() uint64 { return e.file.CompressedSize64 }

// Modified returns the entry's modification time.
func (e Entry) Modified() time.Time { return e.file.Modified }

// Open returns a reader over the decompressed payload. The checksum is
// verified when the reader reaches EOF.
func (e Entry) Open() (io.ReadCloser, error) {
	reader, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w: %w", e.file.Name, ErrInvalidArchive, err)
	}
	return reader, nil
}

// ReadAll returns the decompressed payload.
func (e Entry) ReadAll() ([]byte, error) {
	reader, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w: %w", e.file.Name, ErrInvalidArchive, err)
	}
	return data, nil
}

// Reader is an archive opened for reading.
type Reader struct {
	path    string
	archive *zip.ReadCloser
	entries []Entry
}

// Open opens the archive at path for reading. The file is never
// written to.
func Open(path string) (*Reader, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return nil, fmt.Errorf("opening %s: %w: %w", path, ErrInvalidArchive, err)
	}
	archive.RegisterDecompressor(uint16(Zstd), newZstdDecompressor)

	entries := make([]Entry, len(archive.File))
	for index, file := range archive.File {
		entries[index] = Entry{file: file}
	}
	return &Reader{path: path, archive: archive, entries: entries}, nil
}

// Path returns the filesystem path the archive was opened from.
func (r *Reader) Path() string { return r.path }

// Entries returns the archive's entries in central directory order.
func (r *Reader) Entries() []Entry { return r.entries }

// Lookup returns the first entry with the given name.
func (r *Reader) Lookup(name string) (Entry, bool) {
	for _, entry := range r.entries {
		if entry.Name() == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.archive.Close()
}

// Writer is an archive being written. A Writer must be finished with
// exactly one call to Close or Abort.
type Writer struct {
	path    string
	file    *os.File
	archive *zip.Writer
}

// Create creates (or truncates) the archive at path.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w: %w", path, ErrInvalidArchive, err)
	}
	archive := zip.NewWriter(file)
	archive.RegisterCompressor(uint16(Zstd), newZstdCompressor)
	return &Writer{path: path, file: file, archive: archive}, nil
}

// Path returns the filesystem path being written.
func (w *Writer) Path() string { return w.path }

// Copy writes entry to the archive unchanged: the raw compressed bytes
// are transferred along with the original header, so name, payload,
// compression method, CRC, and timestamps are preserved exactly.
func (w *Writer) Copy(entry Entry) error {
	if err := w.archive.Copy(entry.file); err != nil {
		return fmt.Errorf("copying entry %s into %s: %w: %w", entry.Name(), w.path, ErrInvalidArchive, err)
	}
	return nil
}

// AddFile appends the file at sourcePath as entry name, compressed
// with method. A missing source file yields an error wrapping
// fs.ErrNotExist and leaves the archive unchanged.
func (w *Writer) AddFile(name, sourcePath string, method Method) error {
	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}

	header := &zip.FileHeader{
		Name:     name,
		Method:   uint16(method),
		Modified: info.ModTime(),
	}
	destination, err := w.archive.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s to %s: %w: %w", name, w.path, ErrInvalidArchive, err)
	}
	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("writing %s to %s: %w: %w", name, w.path, ErrInvalidArchive, err)
	}
	return nil
}

// Close writes the central directory and closes the file. On failure
// the partial file is removed.
func (w *Writer) Close() error {
	archiveErr := w.archive.Close()
	fileErr := w.file.Close()
	if err := errors.Join(archiveErr, fileErr); err != nil {
		_ = os.Remove(w.path)
		return fmt.Errorf("finishing %s: %w: %w", w.path, ErrInvalidArchive, err)
	}
	return nil
}

// Abort closes the archive and removes the partially written file.
// Errors are ignored: Abort runs on paths that are already failing.
func (w *Writer) Abort() {
	_ = w.archive.Close()
	_ = w.file.Close()
	_ = os.Remove(w.path)
}
