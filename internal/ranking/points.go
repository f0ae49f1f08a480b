package ranking

import "regexp"

var pointsRe = regexp.MustCompile(`^[0-9]+ pts$`)

// IsPoints reports whether rank is a point total such as "9 pts".
func IsPoints(rank string) bool {
	return pointsRe.MatchString(rank)
}
