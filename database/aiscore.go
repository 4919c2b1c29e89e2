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

// GetAIScore returns the score row for a batch, or nil when no
// commitment exists
func (d *Database) GetAIScore(
	batchHash []byte,
	txn *Txn,
) (*models.AIScore, error) {
	ret := &models.AIScore{}
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	result := db.Where("batch_hash = ?", batchHash).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetAIScoreCommit creates the committed-state row for a batch. The
// caller is responsible for the existence check; this is a plain insert
func (d *Database) SetAIScoreCommit(
	batchHash []byte,
	commitHash []byte,
	committedAt int64,
	txn *Txn,
) error {
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	entry := &models.AIScore{
		BatchHash:   batchHash,
		CommitHash:  commitHash,
		CommittedAt: committedAt,
	}
	if result := db.Create(entry); result.Error != nil {
		return fmt.Errorf("failed to create score commit: %w", result.Error)
	}
	return nil
}

// SetAIScoreReveal transitions an existing row to the revealed state
func (d *Database) SetAIScoreReveal(
	batchHash []byte,
	revealHash []byte,
	revealedAt int64,
	txn *Txn,
) error {
	db := d.metadata.DB()
	if txn != nil {
		db = txn.Metadata()
	}
	updates := map[string]any{
		"reveal_hash": revealHash,
		"revealed_at": revealedAt,
	}
	result := db.Model(&models.AIScore{}).
		Where("batch_hash = ?", batchHash).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update score reveal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("no score row to reveal")
	}
	return nil
}
