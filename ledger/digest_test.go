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

package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrilink-io/sarson/ledger"
)

func TestHashDataKnownVector(t *testing.T) {
	// Keccak-256 of the empty input
	require.Equal(
		t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		ledger.HashData().String(),
	)
}

func TestHashDataConcatenation(t *testing.T) {
	// Hashing parts is equivalent to hashing their concatenation
	require.Equal(
		t,
		ledger.HashData([]byte("foobar")),
		ledger.HashData([]byte("foo"), []byte("bar")),
	)
	require.Equal(
		t,
		ledger.HashData([]byte("foo")),
		ledger.HashString("foo"),
	)
}

func TestParseDigest(t *testing.T) {
	d := ledger.HashString("roundtrip")
	parsed, err := ledger.ParseDigest(d.String())
	require.NoError(t, err)
	require.Equal(t, d, parsed)

	// 0x prefix is tolerated
	parsed, err = ledger.ParseDigest("0x" + d.String())
	require.NoError(t, err)
	require.Equal(t, d, parsed)

	_, err = ledger.ParseDigest("not-hex")
	require.Error(t, err)

	// Wrong length
	_, err = ledger.ParseDigest("abcdef")
	require.Error(t, err)
}

func TestDigestJSON(t *testing.T) {
	d := ledger.HashString("json")
	buf, err := json.Marshal(d)
	require.NoError(t, err)
	require.JSONEq(t, `"`+d.String()+`"`, string(buf))

	var decoded ledger.Digest
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.Equal(t, d, decoded)
}

func TestDigestIsZero(t *testing.T) {
	var zero ledger.Digest
	require.True(t, zero.IsZero())
	require.False(t, ledger.HashString("x").IsZero())
}
