package core

import "github.com/shopspring/decimal"

// Stats is the aggregate view over all records of one user.
//
// With no records every numeric field is zero; HasRecords tells that case
// apart from records that genuinely sum to zero.
type Stats struct {
	Total      float64 `json:"total"`
	ActiveDays int     `json:"activeDays"`
	Average    float64 `json:"average"`
	Best       float64 `json:"best"`
	Worst      float64 `json:"worst"`
	HasRecords bool    `json:"hasRecords"`
}

// Average divides total by count, treating a zero count as one.
func Average(total float64, count int) float64 {
	if count < 1 {
		count = 1
	}
	return decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(count))).InexactFloat64()
}

// Sum adds the record amounts.
func Sum(records []Record) float64 {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromFloat(r.Amount))
	}
	return total.InexactFloat64()
}

// CountPositive counts records with a strictly positive amount.
// It is reported as "active days" even though it counts records, not days.
func CountPositive(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Amount > 0 {
			n++
		}
	}
	return n
}

// MinMax returns the smallest and largest amount, or 0, 0 for no records.
func MinMax(records []Record) (min, max float64) {
	if len(records) == 0 {
		return 0, 0
	}
	min, max = records[0].Amount, records[0].Amount
	for _, r := range records[1:] {
		if r.Amount < min {
			min = r.Amount
		}
		if r.Amount > max {
			max = r.Amount
		}
	}
	return min, max
}

// DistinctCategories counts the different categories present.
func DistinctCategories(records []Record) int {
	seen := make(map[Category]struct{}, len(records))
	for _, r := range records {
		seen[r.Category] = struct{}{}
	}
	return len(seen)
}

// NewStats combines the two store aggregates into the displayed statistics.
func NewStats(total float64, activeDays int, min, max float64) Stats {
	return Stats{
		Total:      total,
		ActiveDays: activeDays,
		Average:    Average(total, activeDays),
		Best:       max,
		Worst:      min,
		HasRecords: activeDays > 0 || max > 0,
	}
}
