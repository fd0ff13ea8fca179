package surface

import (
	"fmt"
	"regexp"
)

var badgePrefix = regexp.MustCompile(`^\(\d+\) `)

// BadgeTitle rewrites a title to carry the unread count: any existing
// "(<digits>) " prefix is stripped, then "(<count>) " is prepended when count
// is positive. Zero or negative count yields the bare title.
func BadgeTitle(title string, count int) string {
	base := badgePrefix.ReplaceAllString(title, "")
	if count <= 0 {
		return base
	}
	return fmt.Sprintf("(%d) %s", count, base)
}

// Badge applies BadgeTitle to a TitleSurface in place.
func Badge(s TitleSurface, count int) {
	s.SetTitle(BadgeTitle(s.Title(), count))
}
