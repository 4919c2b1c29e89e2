// Copyright 2025 Agrilink Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the size in bytes of all digests used as keys and
// commitments throughout the ledger
const DigestSize = 32

// Digest is a fixed-size opaque identifier produced by hashing
// caller-supplied data. It is used both as a record key and as a content
// commitment
type Digest [DigestSize]byte

// Identity is an address-like principal, represented as the digest of the
// principal's credentials
type Identity = Digest

// NewDigest creates a Digest from a byte slice. The input must be exactly
// DigestSize bytes
func NewDigest(data []byte) (Digest, error) {
	var d Digest
	if len(data) != DigestSize {
		return d, fmt.Errorf(
			"invalid digest length: expected %d bytes, got %d",
			DigestSize,
			len(data),
		)
	}
	copy(d[:], data)
	return d, nil
}

// ParseDigest decodes a hex-encoded digest, with or without a 0x prefix
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest encoding: %w", err)
	}
	return NewDigest(data)
}

// HashData computes the ledger's commitment function over the
// concatenation of the given byte slices. The reference system uses
// Keccak-256, and off-chain tooling depends on matching it bit-for-bit
func HashData(parts ...[]byte) Digest {
	h := sha3.NewLegacyKeccak256()
	for _, part := range parts {
		h.Write(part)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// HashString is a convenience wrapper around HashData for string input
func HashString(s string) Digest {
	return HashData([]byte(s))
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns the digest as a byte slice
func (d Digest) Bytes() []byte {
	return d[:]
}

// IsZero returns true for the all-zero digest
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler so digests serialize as
// hex strings in JSON event payloads
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Digest) UnmarshalText(text []byte) error {
	tmp, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = tmp
	return nil
}
