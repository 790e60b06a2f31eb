package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"max.ks1230/expenses-app/internal/entity/entry"
)

func Test_OnSearch_ShouldMatchCaseInsensitiveSubstring(t *testing.T) {
	recs := []entry.Record{
		{ID: "1", Title: "Coffee Shop"},
		{ID: "2", Title: "Groceries"},
		{ID: "3", Title: "Decaf coffee beans"},
	}

	matched := SearchByTitle(recs, "cof")

	assert.Len(t, matched, 2)
	assert.Equal(t, "1", matched[0].ID)
	assert.Equal(t, "3", matched[1].ID)
}

func Test_OnEmptySearch_ShouldReturnInput(t *testing.T) {
	recs := []entry.Record{{ID: "1", Title: "Anything"}}
	assert.Equal(t, recs, SearchByTitle(recs, "  "))
}

func Test_OnReveal_ShouldReturnPageTimesSizeItems(t *testing.T) {
	recs := make([]entry.Record, 25)

	assert.Len(t, Reveal(recs, 1, 10), 10)
	assert.Len(t, Reveal(recs, 2, 10), 20)
	assert.Len(t, Reveal(recs, 3, 10), 25)
	assert.Len(t, Reveal(recs, 4, 10), 25)
	assert.Nil(t, Reveal(recs, 0, 10))
}

func Test_OnCreatedToday_ShouldFilterByOwnerAndCalendarDay(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	recs := []entry.Record{
		{ID: "1", Username: "max", CreatedAt: noon.Add(-2 * time.Hour)},
		{ID: "2", Username: "kate", CreatedAt: noon},
		{ID: "3", Username: "max", CreatedAt: noon.AddDate(0, 0, -1)},
		{ID: "4", Username: "max", CreatedAt: time.Date(2024, 5, 1, 23, 59, 0, 0, time.Local)},
	}

	todays := CreatedToday(recs, "max", noon)

	assert.Len(t, todays, 2)
	assert.Equal(t, "1", todays[0].ID)
	assert.Equal(t, "4", todays[1].ID)
}
