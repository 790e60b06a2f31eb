package ledger

import (
	"strings"
	"time"

	"github.com/jinzhu/now"

	"max.ks1230/expenses-app/internal/entity/entry"
)

// The view helpers below are the presentation-level filters: they are
// pure, recomputed per call, and preserve the order of their input.

// SearchByTitle matches a case-insensitive substring of the title.
func SearchByTitle(recs []entry.Record, query string) []entry.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return recs
	}
	res := make([]entry.Record, 0)
	for _, e := range recs {
		if strings.Contains(strings.ToLower(e.Title), q) {
			res = append(res, e)
		}
	}
	return res
}

// Reveal returns the first page*size records: pagination reveals items
// cumulatively rather than slicing a single page.
func Reveal(recs []entry.Record, page, size int) []entry.Record {
	if page < 1 || size < 1 {
		return nil
	}
	n := page * size
	if n > len(recs) {
		n = len(recs)
	}
	return recs[:n]
}

// CreatedToday keeps entries created by username on the same calendar
// day as ref.
func CreatedToday(recs []entry.Record, username string, ref time.Time) []entry.Record {
	day := now.New(ref)
	start, end := day.BeginningOfDay(), day.EndOfDay()

	res := make([]entry.Record, 0)
	for _, e := range recs {
		if e.Username != username {
			continue
		}
		if e.CreatedAt.Before(start) || e.CreatedAt.After(end) {
			continue
		}
		res = append(res, e)
	}
	return res
}
