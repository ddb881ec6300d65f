// Package identity implements the user and session layer of filehub: the
// in-memory user index, the cookie-based session protocol, and the
// persistence discipline that keeps the index consistent with the record
// store.
package identity

import (
	"regexp"
	"slices"
)

// Reserved handles.
const (
	// GuestHandle is the anonymous identity. Every failed lookup resolves
	// to it; it can never authenticate.
	GuestHandle = "guest"

	// KernelHandle is the built-in superuser constructed at startup from
	// configuration. It is never written to the record store.
	KernelHandle = "kernel"
)

// Well-known groups.
const (
	// PublicGroup is the group every user belongs to.
	PublicGroup = "public"

	// AdminGroup confers administrative privileges. Privilege checks go
	// through membership of this group, never through a handle comparison.
	AdminGroup = "admin"
)

// MaxRecentAddresses bounds the per-user address history.
const MaxRecentAddresses = 16

var handleRe = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// ValidHandle reports whether s is a well-formed handle: lowercase letters,
// digits and underscores, between 1 and 32 bytes.
func ValidHandle(s string) bool {
	return handleRe.MatchString(s)
}

// User is a plain identity record. It carries no reference to the Manager;
// session-index wiring and persistence are the Manager's responsibility.
//
// The JSON form of this struct is the opaque blob stored in the record
// store's users table, keyed by Handle.
type User struct {
	Handle     string `json:"handle"`
	Credential string `json:"credential"`

	Groups       []string `json:"groups"`
	SessionToken string   `json:"session_token,omitempty"`

	// RecentAddresses holds the last MaxRecentAddresses client addresses
	// used to authenticate, most recent first.
	RecentAddresses []string `json:"recent_addresses,omitempty"`

	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Email       string `json:"email"`

	// Followers and Friends reference other users by handle only. A deleted
	// user leaves dangling handles behind; lookups on them resolve to guest.
	Followers []string `json:"followers,omitempty"`
	Friends   []string `json:"friends,omitempty"`
}

// NewUser constructs a user with fresh containers and membership of the
// public group.
func NewUser(handle string) *User {
	return &User{
		Handle: handle,
		Groups: []string{PublicGroup},
	}
}

// NewGuest constructs the anonymous default user.
func NewGuest() *User {
	u := NewUser(GuestHandle)
	u.DisplayName = "Guest"
	u.Description = "The guy who just wanders around."
	return u
}

// InGroup reports whether the user belongs to the given group.
func (u *User) InGroup(id string) bool {
	return slices.Contains(u.Groups, id)
}

// IsAdmin reports whether the user holds administrative privileges.
func (u *User) IsAdmin() bool {
	return u.InGroup(AdminGroup)
}

// RecordAddress prepends addr to the address history and evicts entries
// beyond MaxRecentAddresses.
func (u *User) RecordAddress(addr string) {
	addrs := make([]string, 0, len(u.RecentAddresses)+1)
	addrs = append(addrs, addr)
	addrs = append(addrs, u.RecentAddresses...)
	if len(addrs) > MaxRecentAddresses {
		addrs = addrs[:MaxRecentAddresses]
	}
	u.RecentAddresses = addrs
}

// Clone returns a deep copy. Lookups hand out clones so readers never share
// mutable state with the Manager's index.
func (u *User) Clone() *User {
	c := *u
	c.Groups = slices.Clone(u.Groups)
	c.RecentAddresses = slices.Clone(u.RecentAddresses)
	c.Followers = slices.Clone(u.Followers)
	c.Friends = slices.Clone(u.Friends)
	return &c
}

// normalize repairs a record loaded from the store: containers are made
// non-nil and public-group membership is restored if missing.
func (u *User) normalize() {
	if u.Groups == nil {
		u.Groups = []string{PublicGroup}
	} else if !u.InGroup(PublicGroup) {
		u.Groups = append(u.Groups, PublicGroup)
	}
	if len(u.RecentAddresses) > MaxRecentAddresses {
		u.RecentAddresses = u.RecentAddresses[:MaxRecentAddresses]
	}
}
