package render

import (
	"sort"
	"time"
)

// sortByDate orders items by date, most recent first. Items without a parseable
// date go last in their original relative order.
func sortByDate[T any](items []T, date func(T) (time.Time, bool)) {
	sort.SliceStable(items, func(i, j int) bool {
		a, aok := date(items[i])
		b, bok := date(items[j])
		switch {
		case aok && bok:
			return a.After(b)
		case aok:
			return true
		default:
			return false
		}
	})
}
