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

package database

import (
	"errors"
	"fmt"

	"github.com/agrilink-io/sarson/database/models"
	"gorm.io/gorm"
)

// GetCapability returns the capability row for an identity, or nil when
// the identity holds no roles
func (d *Database) GetCapability(
	identity []byte,
	txn *Txn,
) (*models.Capability, error) {
	ret := &models.Capability{}
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	result := db.Where("identity = ?", identity).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetCapability saves the full bitmask for an identity, creating the row
// if needed
func (d *Database) SetCapability(
	identity []byte,
	roles uint64,
	txn *Txn,
) error {
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	entry := &models.Capability{}
	result := db.FirstOrCreate(entry, models.Capability{Identity: identity})
	if result.Error != nil {
		return fmt.Errorf("failed to find or create capability: %w", result.Error)
	}
	if err := db.Model(entry).Update("roles", roles).Error; err != nil {
		return fmt.Errorf("failed to update capability: %w", err)
	}
	return nil
}
