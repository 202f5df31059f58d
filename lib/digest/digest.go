// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 hash.
type Digest [32]byte

// runDomainKey separates run-token hashes from content hashes. The
// bytes are the ASCII domain name, zero-padded to 32 bytes.
var runDomainKey = [32]byte{
	'o', 'd', 'e', 'x', 'p', 'a', 't', 'c', 'h', '.', 'r', 'u', 'n',
}

// runSequence makes RunToken unique within a process even for repeated
// runs over the same path.
var runSequence atomic.Uint64

// HashFile computes the BLAKE3 digest of the file at path, streaming
// it through the hasher.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex encoding of digest.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// RunToken returns a 12-character hex token for one run over source.
// Tokens never repeat within a process.
func RunToken(source string) string {
	hasher, err := blake3.NewKeyed(runDomainKey[:])
	if err != nil {
		// NewKeyed only fails for keys that are not 32 bytes.
		panic("digest: run domain key: " + err.Error())
	}
	var sequence [8]byte
	binary.BigEndian.PutUint64(sequence[:], runSequence.Add(1))
	hasher.Write(sequence[:])
	hasher.Write([]byte(source))
	return hex.EncodeToString(hasher.Sum(nil)[:6])
}
