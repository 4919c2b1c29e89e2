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

// Capability is the flat authorization table: one row per identity
// holding its packed role bitmask
type Capability struct {
	Identity []byte `gorm:"uniqueIndex;size:32"`
	ID       uint   `gorm:"primarykey"`
	Roles    uint64
}

func (Capability) TableName() string {
	return "capability"
}
