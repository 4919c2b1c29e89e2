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
	"fmt"
	"strings"

	"github.com/agrilink-io/sarson/database"
)

// RoleMask is a set of independent capability flags packed into one
// integer and checked via bitwise AND. ADMIN is a flag like any other:
// it gates grant/revoke but confers no other capability
type RoleMask uint64

const (
	RoleAdmin RoleMask = 1 << iota
	RoleFarmer
	RoleFPO
	RoleWarehouse
	RoleLogistics
	RoleProcessor
	RolePackager
	RoleAIOracle

	// RoleAll is the full bitmask granted to the genesis identity
	RoleAll RoleMask = RoleAdmin | RoleFarmer | RoleFPO | RoleWarehouse |
		RoleLogistics | RoleProcessor | RolePackager | RoleAIOracle
)

var roleNames = map[RoleMask]string{
	RoleAdmin:     "ADMIN",
	RoleFarmer:    "FARMER",
	RoleFPO:       "FPO",
	RoleWarehouse: "WAREHOUSE",
	RoleLogistics: "LOGISTICS",
	RoleProcessor: "PROCESSOR",
	RolePackager:  "PACKAGER",
	RoleAIOracle:  "AI_ORACLE",
}

// Has returns true when every bit in role is set in the mask
func (m RoleMask) Has(role RoleMask) bool {
	return m&role == role
}

func (m RoleMask) String() string {
	if m == 0 {
		return "NONE"
	}
	var names []string
	for bit := RoleAdmin; bit <= RoleAIOracle; bit <<= 1 {
		if m&bit != 0 {
			names = append(names, roleNames[bit])
		}
	}
	return strings.Join(names, "|")
}

// GrantRole sets the OR of roles into the identity's bitmask. The caller
// must hold ADMIN. Re-granting an already-held role is a no-op on the
// mask but still emits RoleGranted
func (l *Ledger) GrantRole(
	caller Identity,
	identity Identity,
	roles RoleMask,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleAdmin); err != nil {
			return nil, err
		}
		current, err := l.rolesOf(txn, identity)
		if err != nil {
			return nil, err
		}
		if err := l.db.SetCapability(
			identity.Bytes(),
			uint64(current|roles),
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: RoleGrantedEventType,
				Key:  identity,
				Payload: RoleGrantedEvent{
					Identity:  identity,
					Roles:     roles,
					Timestamp: now,
				},
			},
		}, nil
	})
}

// RevokeRole clears the given roles from the identity's bitmask. The
// caller must hold ADMIN. Revoking a role the identity lacks is a no-op
// on the mask but still emits RoleRevoked
func (l *Ledger) RevokeRole(
	caller Identity,
	identity Identity,
	roles RoleMask,
) error {
	return l.mutate(func(txn *database.Txn, now int64) ([]pendingEvent, error) {
		if err := l.requireRole(txn, caller, RoleAdmin); err != nil {
			return nil, err
		}
		current, err := l.rolesOf(txn, identity)
		if err != nil {
			return nil, err
		}
		if err := l.db.SetCapability(
			identity.Bytes(),
			uint64(current&^roles),
			txn,
		); err != nil {
			return nil, err
		}
		return []pendingEvent{
			{
				Type: RoleRevokedEventType,
				Key:  identity,
				Payload: RoleRevokedEvent{
					Identity:  identity,
					Roles:     roles,
					Timestamp: now,
				},
			},
		}, nil
	})
}

// HasRole reports whether the identity holds every bit in role
func (l *Ledger) HasRole(identity Identity, role RoleMask) (bool, error) {
	roles, err := l.GetRoles(identity)
	if err != nil {
		return false, err
	}
	return roles.Has(role), nil
}

// GetRoles returns the identity's full capability bitmask
func (l *Ledger) GetRoles(identity Identity) (RoleMask, error) {
	return l.rolesOf(nil, identity)
}

func (l *Ledger) rolesOf(
	txn *database.Txn,
	identity Identity,
) (RoleMask, error) {
	entry, err := l.db.GetCapability(identity.Bytes(), txn)
	if err != nil {
		return 0, err
	}
	if entry == nil {
		return 0, nil
	}
	return RoleMask(entry.Roles), nil
}

func (l *Ledger) requireRole(
	txn *database.Txn,
	caller Identity,
	role RoleMask,
) error {
	roles, err := l.rolesOf(txn, caller)
	if err != nil {
		return err
	}
	if !roles.Has(role) {
		return fmt.Errorf(
			"%w: caller %s lacks role %s",
			ErrUnauthorized,
			caller,
			role,
		)
	}
	return nil
}
