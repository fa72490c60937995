package model

import (
	"sort"
	"strings"
)

// GuestGroup is the customer group name used when no identity is resolved.
const GuestGroup = "guest"

// RetailGroup is assumed for a customer whose group could not be looked up.
const RetailGroup = "retail"

// Customer is the identity subset read from the platform.
type Customer struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	GroupID   *int     `json:"groupId,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// CustomerGroup is a platform customer group.
type CustomerGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CustomerContext classifies a storefront visitor for pricing and targeting.
// Invariant: IsLoggedIn == (CustomerID != nil).
type CustomerContext struct {
	CustomerID      *string  `json:"customerId"`
	IsLoggedIn      bool     `json:"isLoggedIn"`
	CustomerGroupID *int     `json:"customerGroupId"`
	CustomerGroup   string   `json:"customerGroup"`
	IsWholesale     bool     `json:"isWholesale"`
	CustomerTags    []string `json:"customerTags"`
	Email           string   `json:"email,omitempty"`
	Name            string   `json:"name,omitempty"`
}

// GuestContext returns the literal guest default.
func GuestContext() CustomerContext {
	return CustomerContext{
		CustomerGroup: GuestGroup,
		CustomerTags:  []string{},
	}
}

// IsWholesaleName reports whether a group or price-list name signals trade pricing.
func IsWholesaleName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "wholesale") || strings.Contains(n, "b2b")
}

// FullName joins first and last name with a single space, trimmed.
func FullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// HasTag reports whether the context carries tag (case-insensitive).
func (c CustomerContext) HasTag(tag string) bool {
	for _, t := range c.CustomerTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ParseTags splits a comma-joined tag list into a normalised tag set.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags trims, de-duplicates (case-insensitively) and sorts tags.
// The result is never nil so it encodes as a JSON array.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
