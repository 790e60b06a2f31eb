package entry

import (
	"sort"
	"time"
)

type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

type Category string

const (
	Fuel            Category = "fuel"
	Maintenance     Category = "maintenance"
	Tolls           Category = "tolls"
	Parking         Category = "parking"
	Insurance       Category = "insurance"
	VehiclePurchase Category = "vehicle_purchase"
	Food            Category = "food"
	Shopping        Category = "shopping"
	Transportation  Category = "transportation"
	Entertainment   Category = "entertainment"
	Bills           Category = "bills"
	Income          Category = "income"
	Other           Category = "other"
)

var Categories = []Category{
	Fuel, Maintenance, Tolls, Parking, Insurance, VehiclePurchase,
	Food, Shopping, Transportation, Entertainment, Bills, Income, Other,
}

// NormalizeCategory maps unknown tags to Other.
func NormalizeCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return Other
}

// Record is a single financial entry. Amount is always non-negative;
// direction comes from Type.
type Record struct {
	ID        string
	Title     string
	Amount    float64
	Type      Type
	Category  Category
	Notes     string
	Username  string
	CreatedAt time.Time
}

// Signed returns the amount with income positive and expense negative.
func (r Record) Signed() float64 {
	if r.Type == TypeExpense {
		return -r.Amount
	}
	return r.Amount
}

// Draft is user input for a new record, before the server assigns an id
// and the store stamps owner and creation time.
type Draft struct {
	Title    string
	Amount   float64
	Type     Type
	Category Category
	Notes    string
}

// SortNewestFirst orders records descending by creation time, keeping
// the original order for equal timestamps.
func SortNewestFirst(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
}
