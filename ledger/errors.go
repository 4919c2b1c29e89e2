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

import "errors"

// Named failure conditions. Every mutating operation either fully applies
// or fails with one of these and no state change
var (
	// ErrUnauthorized indicates the caller lacks the capability required
	// by the operation
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyRegistered indicates a farmer record already exists for
	// the given farmer DID
	ErrAlreadyRegistered = errors.New("farmer already registered")

	// ErrFarmerNotRegistered indicates the referenced farmer record does
	// not exist
	ErrFarmerNotRegistered = errors.New("farmer not registered")

	// ErrSKUAlreadyExists indicates a package record already exists for
	// the given SKU
	ErrSKUAlreadyExists = errors.New("SKU already exists")

	// ErrSKUNotFound indicates the referenced package record does not
	// exist
	ErrSKUNotFound = errors.New("SKU not found")

	// ErrAlreadyCommitted indicates a score commitment already exists for
	// the given batch
	ErrAlreadyCommitted = errors.New("score already committed")

	// ErrNotCommitted indicates no score commitment exists for the given
	// batch
	ErrNotCommitted = errors.New("score not committed")

	// ErrAlreadyRevealed indicates the score for the given batch has
	// already been revealed
	ErrAlreadyRevealed = errors.New("score already revealed")

	// ErrRevealTooEarly indicates the reveal arrived before the minimum
	// reveal delay elapsed
	ErrRevealTooEarly = errors.New("reveal too early")

	// ErrRevealTooLate indicates the reveal arrived after the maximum
	// reveal delay elapsed
	ErrRevealTooLate = errors.New("reveal too late")

	// ErrInvalidReveal indicates the revealed value and nonce do not hash
	// to the stored commitment
	ErrInvalidReveal = errors.New("invalid reveal")

	// ErrLengthMismatch indicates parallel-array batch inputs of unequal
	// length
	ErrLengthMismatch = errors.New("length mismatch")
)
