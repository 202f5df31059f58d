// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides odexpatch's CBOR encoding configuration.
//
// odexpatch uses two serialization formats:
//
//   - JSON for terminal output (odexpatch --json).
//   - CBOR for report files written with --report, which downstream
//     tooling reads back to diff batches or verify output digests.
//
// Result types carry `json` struct tags only. fxamacker/cbor reads
// `json` tags as a fallback when `cbor` tags are absent, so one tag
// controls field naming and omitempty for both formats, and `json:"-"`
// keeps a field out of both.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same batch results always produce identical report bytes.
package codec
