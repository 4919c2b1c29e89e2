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

// AIScore is the two-phase commit-reveal row per batch. RevealHash is
// empty and RevealedAt zero until the commitment is opened; row presence
// marks the committed state
type AIScore struct {
	BatchHash   []byte `gorm:"uniqueIndex;size:32"`
	CommitHash  []byte `gorm:"size:32"`
	RevealHash  []byte `gorm:"size:32"`
	ID          uint   `gorm:"primarykey"`
	CommittedAt int64
	RevealedAt  int64
}

func (AIScore) TableName() string {
	return "ai_score"
}
