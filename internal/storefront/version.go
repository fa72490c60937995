package storefront

import (
	"strings"

	"golang.org/x/mod/semver"
)

// VersionSupported reports whether a widget bundle version satisfies min.
// An empty min or an unreported version always passes; a version that is
// not semver fails against any minimum.
func VersionSupported(version, min string) bool {
	if min == "" || version == "" {
		return true
	}
	v, m := canonical(version), canonical(min)
	if !semver.IsValid(v) {
		return false
	}
	if !semver.IsValid(m) {
		return true
	}
	return semver.Compare(v, m) >= 0
}

// canonical adds the "v" prefix x/mod/semver requires.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
