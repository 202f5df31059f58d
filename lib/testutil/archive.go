// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Zip method numbers used by fixtures.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = 93
)

// fixtureTime keeps fixture archives byte-identical across runs.
var fixtureTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// ArchiveEntry is one fixture entry: its name, decompressed payload,
// and stored compression method.
type ArchiveEntry struct {
	Name   string
	Data   []byte
	Method uint16
}

// WriteArchive writes a zip file at path containing entries in order.
func WriteArchive(t testing.TB, path string, entries ...ArchiveEntry) {
	t.Helper()

	var buffer bytes.Buffer
	archive := zip.NewWriter(&buffer)
	archive.RegisterCompressor(MethodZstd, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})
	for _, entry := range entries {
		writer, err := archive.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   entry.Method,
			Modified: fixtureTime,
		})
		if err != nil {
			t.Fatalf("creating fixture entry %s: %v", entry.Name, err)
		}
		if _, err := writer.Write(entry.Data); err != nil {
			t.Fatalf("writing fixture entry %s: %v", entry.Name, err)
		}
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("closing fixture archive: %v", err)
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture archive %s: %v", path, err)
	}
}

// ReadArchive returns every entry of the zip file at path in order,
// with decompressed payloads and stored methods.
func ReadArchive(t testing.TB, path string) []ArchiveEntry {
	t.Helper()

	archive, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive %s: %v", path, err)
	}
	defer archive.Close()
	archive.RegisterDecompressor(MethodZstd, func(r io.Reader) io.ReadCloser {
		decoder, err := zstd.NewReader(r)
		if err != nil {
			t.Fatalf("zstd decoder: %v", err)
		}
		return decoder.IOReadCloser()
	})

	var entries []ArchiveEntry
	for _, file := range archive.File {
		reader, err := file.Open()
		if err != nil {
			t.Fatalf("opening %s in %s: %v", file.Name, path, err)
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			t.Fatalf("reading %s in %s: %v", file.Name, path, err)
		}
		entries = append(entries, ArchiveEntry{Name: file.Name, Data: data, Method: file.Method})
	}
	return entries
}

// EntryNames returns the names of entries, in order.
func EntryNames(entries []ArchiveEntry) []string {
	names := make([]string, len(entries))
	for index, entry := range entries {
		names[index] = entry.Name
	}
	return names
}
