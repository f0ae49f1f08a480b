// Package ranking turns the point totals some events publish into placements
// and collapses placement ranges such as "5-8" into their best rank.
package ranking
