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

// GetWarehouse returns the warehouse row, or nil when the warehouse has
// never been updated
func (d *Database) GetWarehouse(
	warehouseID []byte,
	txn *Txn,
) (*models.Warehouse, error) {
	ret := &models.Warehouse{}
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	result := db.Where("warehouse_id = ?", warehouseID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetWarehouse overwrites the state for a warehouse, creating the row on
// first update
func (d *Database) SetWarehouse(
	warehouseID []byte,
	stateHash []byte,
	lastUpdated int64,
	txn *Txn,
) error {
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	entry := &models.Warehouse{}
	result := db.FirstOrCreate(entry, models.Warehouse{WarehouseID: warehouseID})
	if result.Error != nil {
		return fmt.Errorf("failed to find or create warehouse: %w", result.Error)
	}
	updates := map[string]any{
		"state_hash":   stateHash,
		"last_updated": lastUpdated,
	}
	if err := db.Model(entry).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update warehouse: %w", err)
	}
	return nil
}
