// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package apk provides entry-level access to Android application
// archives (APK and JAR files), which are standard zip containers.
//
// The package exists to give the odex pipeline one guarantee: an entry
// copied from a source archive into an output archive keeps its name,
// payload, and compression method byte for byte. [Writer.Copy] moves
// the raw compressed stream and the original header, so nothing is
// ever decompressed and recompressed on the way through. New entries
// (compiled artifacts) are added with [Writer.AddFile] using an
// explicit [Method].
//
// Reading and writing use github.com/klauspost/compress/zip, a
// drop-in replacement for archive/zip with faster deflate. Zstandard
// (zip method 93) is registered on every [Reader] and [Writer] through
// github.com/klauspost/compress/zstd, so archives produced by tooling
// that emits zstd entries are readable and round-trip unchanged.
//
// Layout conventions shared with the rest of the pipeline:
//
//   - [PrimaryBytecode] is the entry holding the application's dex
//     bytecode ("classes.dex").
//   - Compiled artifacts live under [ArtifactPrefix] in a one-character
//     shard directory, see [ArtifactPath].
//
// Malformed containers surface as errors wrapping [ErrInvalidArchive].
// Missing files surface as errors wrapping [fs.ErrNotExist]. Source
// archives are only ever opened read-only.
package apk
