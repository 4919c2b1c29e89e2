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

package models

// Package is the write-once SKU row binding a package to its parent
// batch digest and the Merkle commitment over its physical units
type Package struct {
	SkuID           []byte `gorm:"uniqueIndex;size:32"`
	ParentBatchHash []byte `gorm:"size:32"`
	MerkleRoot      []byte `gorm:"size:32"`
	ID              uint   `gorm:"primarykey"`
	PackagedAt      int64
}

func (Package) TableName() string {
	return "package"
}
