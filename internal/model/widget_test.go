package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func loggedIn(group string, tags ...string) CustomerContext {
	id := "42"
	return CustomerContext{CustomerID: &id, IsLoggedIn: true, CustomerGroup: group, CustomerTags: tags}
}

func TestTargetingAllows(t *testing.T) {
	tests := []struct {
		name      string
		targeting Targeting
		cc        CustomerContext
		want      bool
	}{
		{"empty targeting allows guests", Targeting{}, GuestContext(), true},
		{"hide from guests blocks guest", Targeting{HideFromGuests: true}, GuestContext(), false},
		{"hide from guests allows customer", Targeting{HideFromGuests: true}, loggedIn("retail"), true},
		{"group match is case-insensitive", Targeting{CustomerGroups: []string{"Wholesale"}}, loggedIn("wholesale"), true},
		{"group mismatch", Targeting{CustomerGroups: []string{"wholesale"}}, loggedIn("retail"), false},
		{"tag match", Targeting{CustomerTags: []string{"vip"}}, loggedIn("retail", "VIP", "east"), true},
		{"group or tag", Targeting{CustomerGroups: []string{"b2b"}, CustomerTags: []string{"vip"}}, loggedIn("retail", "vip"), true},
		{"guest group listed explicitly", Targeting{CustomerGroups: []string{"guest"}}, GuestContext(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.targeting.Allows(tt.cc))
		})
	}
}

func TestIsWholesaleName(t *testing.T) {
	assert.True(t, IsWholesaleName("Wholesale Tier 1"))
	assert.True(t, IsWholesaleName("EU-B2B"))
	assert.False(t, IsWholesaleName("Retail"))
	assert.False(t, IsWholesaleName(""))
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", FullName(" Ada ", "Lovelace"))
	assert.Equal(t, "Lovelace", FullName("", "Lovelace"))
	assert.Equal(t, "", FullName("", ""))
}

func TestQuantityBreakContains(t *testing.T) {
	ten := 10
	bounded := QuantityBreak{Min: 5, Max: &ten}
	open := QuantityBreak{Min: 20}

	assert.False(t, bounded.Contains(4))
	assert.True(t, bounded.Contains(5))
	assert.True(t, bounded.Contains(10))
	assert.False(t, bounded.Contains(11))
	assert.True(t, open.Contains(1000))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{"east", "vip"}, ParseTags(" vip, east ,,VIP"))
	assert.Equal(t, []string{}, NormalizeTags(nil))
}
