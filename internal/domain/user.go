package domain

import (
	"sort"
	"strings"
)

// Directory groups. Membership in one of them is required by the API.
const (
	GroupSuperAdmin = "superadmin"
	GroupAdmin      = "admin"
	GroupResident   = "resident"
)

// AdminGroups may manage content; MemberGroups may read it and use the forum.
var (
	AdminGroups  = []string{GroupAdmin, GroupSuperAdmin}
	MemberGroups = []string{GroupResident, GroupAdmin, GroupSuperAdmin}
)

// User is an identity directory entry keyed by username.
type User struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Groups       []string          `json:"groups"`
	Attributes   map[string]string `json:"attributes"`
	PasswordHash string            `json:"passwordHash"`
	CreatedAt    int64             `json:"createdAt"`
}

// UserAttribute is a name/value pair of canonical user attributes.
type UserAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// AttributeList returns the user's attributes, including email, sorted by name.
func (u *User) AttributeList() []UserAttribute {
	attrs := make(map[string]string, len(u.Attributes)+1)
	for k, v := range u.Attributes {
		attrs[k] = v
	}
	if u.Email != "" {
		attrs["email"] = u.Email
	}
	out := make([]UserAttribute, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, UserAttribute{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NormalizeGroups lower-cases, trims and de-duplicates group names.
func NormalizeGroups(groups []string) []string {
	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// InAnyGroup reports whether groups intersects allowed.
func InAnyGroup(groups []string, allowed ...string) bool {
	for _, g := range groups {
		for _, a := range allowed {
			if strings.EqualFold(g, a) {
				return true
			}
		}
	}
	return false
}
