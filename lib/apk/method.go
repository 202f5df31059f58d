// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package apk

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Method is a zip compression method identifier as stored in local
// and central directory headers. These values are format constants
// from the zip APPNOTE and must not change.
type Method uint16

const (
	// Store writes the payload uncompressed. Android requires some
	// entries (resources.arsc, native libraries for mmap loading) to
	// be stored.
	Store Method = Method(zip.Store)

	// Deflate is the default compression for most APK entries.
	Deflate Method = Method(zip.Deflate)

	// Zstd is Zstandard compression, APPNOTE method 93.
	Zstd Method = 93
)

// String returns the configuration name of a method.
func (method Method) String() string {
	switch method {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(method))
	}
}

// ParseMethod parses a method from its configuration name.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "store":
		return Store, nil
	case "deflate":
		return Deflate, nil
	case "zstd":
		return Zstd, nil
	default:
		return 0, fmt.Errorf("unknown compression method: %q", name)
	}
}

// newZstdCompressor is registered on every Writer for method 93.
func newZstdCompressor(w io.Writer) (io.WriteCloser, error) {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd compressor: %w", err)
	}
	return encoder, nil
}

// newZstdDecompressor is registered on every Reader for method 93.
// The zip Decompressor signature has no error return, so construction
// failures are deferred to the first Read.
func newZstdDecompressor(r io.Reader) io.ReadCloser {
	decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return failedReader{err: fmt.Errorf("zstd decompressor: %w", err)}
	}
	return decoder.IOReadCloser()
}

type failedReader struct {
	err error
}

func (r failedReader) Read([]byte) (int, error) { return 0, r.err }

func (r failedReader) Close() error { return nil }
