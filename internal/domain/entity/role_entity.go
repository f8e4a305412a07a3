package entity

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Role tags carried by a user. Every user holds at least RoleBuyer.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// DefaultRoles returns the role set assigned at registration. The very first
// account in the store is bootstrapped with the full set.
func DefaultRoles(firstUser bool) []string {
	if firstUser {
		return []string{RoleAdmin, RoleSeller, RoleBuyer}
	}
	return []string{RoleBuyer}
}

// RoleSet exposes roles as a set; duplicates in the backing slice collapse.
func (u *User) RoleSet() mapset.Set[string] {
	return mapset.NewSet[string](u.Roles...)
}

func (u *User) HasRole(role string) bool {
	return u.RoleSet().Contains(role)
}

// AddRole grants a role in memory and reports whether the set changed.
// Adding a role the user already holds is a no-op.
func (u *User) AddRole(role string) bool {
	if u.HasRole(role) {
		return false
	}
	u.Roles = append(u.Roles, role)
	return true
}
