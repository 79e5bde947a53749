package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role uint8

const (
	RoleNone Role = iota
	RoleMaster
	RoleBorrower
	RoleLibworker
	RoleKeeper
)

var roleNames = [...]string{
	RoleNone:      "",
	RoleMaster:    "MASTER",
	RoleBorrower:  "BORROWER",
	RoleLibworker: "LIBWORKER",
	RoleKeeper:    "KEEPER",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", r)
}

// ParseRole converts a wire name into a Role. The empty string is RoleNone.
func ParseRole(name string) (Role, error) {
	for i, n := range roleNames {
		if strings.EqualFold(n, name) {
			return Role(i), nil
		}
	}
	return RoleNone, fmt.Errorf("invalid role %q", name)
}

func (r Role) MarshalText() ([]byte, error) {
	if int(r) >= len(roleNames) {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(roleNames[r]), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// RoleSet is a set of roles. The zero value is empty.
type RoleSet uint8

func RolesOf(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

func (s RoleSet) Add(r Role) RoleSet {
	if r == RoleNone {
		return s
	}
	return s | 1<<r
}

func (s RoleSet) Has(r Role) bool {
	return r != RoleNone && s&(1<<r) != 0
}

// Intersects reports whether the two sets share a role.
func (s RoleSet) Intersects(o RoleSet) bool {
	return s&o != 0
}

func (s RoleSet) Empty() bool {
	return s == 0
}

// Roles lists the members in declaration order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for r := RoleMaster; r <= RoleKeeper; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, 4)
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 4)
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return json.Marshal(names)
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		// a bare role name is accepted as a single-member set
		var name string
		if err2 := json.Unmarshal(data, &name); err2 != nil {
			return err
		}
		names = []string{name}
	}
	var set RoleSet
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return err
		}
		set = set.Add(r)
	}
	*s = set
	return nil
}
