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

// GetPackage returns the package row for a SKU, or nil when absent
func (d *Database) GetPackage(
	skuID []byte,
	txn *Txn,
) (*models.Package, error) {
	ret := &models.Package{}
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	result := db.Where("sku_id = ?", skuID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetPackage creates the write-once package row. The caller is
// responsible for the existence check; this is a plain insert
func (d *Database) SetPackage(
	skuID []byte,
	parentBatchHash []byte,
	merkleRoot []byte,
	packagedAt int64,
	txn *Txn,
) error {
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	entry := &models.Package{
		SkuID:           skuID,
		ParentBatchHash: parentBatchHash,
		MerkleRoot:      merkleRoot,
		PackagedAt:      packagedAt,
	}
	if result := db.Create(entry); result.Error != nil {
		return fmt.Errorf("failed to create package: %w", result.Error)
	}
	return nil
}
