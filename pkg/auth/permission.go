package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a scope that can be granted to an API key.
type Permission string

const (
	PermissionAccount     Permission = "account"
	PermissionInventories Permission = "inventories"
	PermissionCharacters  Permission = "characters"
	PermissionTradingPost Permission = "tradingpost"
	PermissionWallet      Permission = "wallet"
	PermissionUnlocks     Permission = "unlocks"
	PermissionPvP         Permission = "pvp"
	PermissionBuilds      Permission = "builds"
	PermissionProgression Permission = "progression"
	PermissionGuilds      Permission = "guilds"
)

var allPermissions = []Permission{
	PermissionAccount,
	PermissionInventories,
	PermissionCharacters,
	PermissionTradingPost,
	PermissionWallet,
	PermissionUnlocks,
	PermissionPvP,
	PermissionBuilds,
	PermissionProgression,
	PermissionGuilds,
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from perms.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// AllPermissions returns every permission a key can hold.
func AllPermissions() PermissionSet { return NewPermissionSet(allPermissions...) }

// MinimalPermissions returns the permissions every key is granted.
func MinimalPermissions() PermissionSet { return NewPermissionSet(PermissionAccount) }

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// ContainsAll reports whether every permission of other is in s.
func (s PermissionSet) ContainsAll(other PermissionSet) bool {
	for p := range other {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParsePermission maps a case-insensitive name to a Permission.
func ParsePermission(raw string) (Permission, error) {
	name := Permission(strings.ToLower(strings.TrimSpace(raw)))
	for _, p := range allPermissions {
		if p == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", raw)
}
