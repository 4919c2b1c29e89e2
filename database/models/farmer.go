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

// Farmer is the write-once registry row binding a farmer DID to its
// crop-identity digest. Row presence is the existence check; a row is
// never updated after creation
type Farmer struct {
	FarmerDID    []byte `gorm:"column:farmer_did;uniqueIndex;size:32"`
	CropIDHash   []byte `gorm:"size:32"`
	ID           uint   `gorm:"primarykey"`
	RegisteredAt int64
}

func (Farmer) TableName() string {
	return "farmer"
}
