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

// Warehouse holds the latest state digest per warehouse. Each update
// fully overwrites the row; no history is retained
type Warehouse struct {
	WarehouseID []byte `gorm:"uniqueIndex;size:32"`
	StateHash   []byte `gorm:"size:32"`
	ID          uint   `gorm:"primarykey"`
	LastUpdated int64
}

func (Warehouse) TableName() string {
	return "warehouse"
}
