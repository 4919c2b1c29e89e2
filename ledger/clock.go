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

import (
	"sync"
	"time"
)

// Clock supplies the timestamp observed by each ledger call. The reveal
// window protocol depends on it being trusted and monotonically
// non-decreasing; callers cannot supply their own timestamps
type Clock interface {
	Now() int64
}

// WallClock is the production Clock. It clamps to the last observed
// value so that system clock steps backward never produce a decreasing
// timestamp
type WallClock struct {
	mu   sync.Mutex
	last int64
}

func NewWallClock() *WallClock {
	return &WallClock{}
}

func (c *WallClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().Unix()
	if now < c.last {
		return c.last
	}
	c.last = now
	return now
}
