// Package metrics derives per-year summary statistics from a region's observations.
package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/housedash/internal/contracts"
)

var hundred = decimal.NewFromInt(100)

// Yearly groups a region's observations by calendar year and returns one metric
// per year that has at least one valid price, ascending by year.
//
// Rows without a Date or a Price are ignored. PriorYearAverageHomeSale refers to
// the previous entry of the returned sequence, which is not necessarily year-1.
// PercentChangeVsPriorYear is null when there is no prior entry or its average is 0.
func Yearly(rows []contracts.Observation) []contracts.YearlyMetric {
	type bucket struct {
		sum   decimal.Decimal
		count int64
	}

	buckets := make(map[int]*bucket)
	for _, row := range rows {
		if !row.HasDate() || !row.Price.Valid {
			continue
		}

		b, ok := buckets[row.Date.Year]
		if !ok {
			b = &bucket{}
			buckets[row.Date.Year] = b
		}
		b.sum = b.sum.Add(row.Price.Decimal)
		b.count++
	}

	years := make([]int, 0, len(buckets))
	for year := range buckets {
		years = append(years, year)
	}
	sort.Ints(years)

	out := make([]contracts.YearlyMetric, 0, len(years))
	var prior *int64
	for _, year := range years {
		b := buckets[year]
		avg := b.sum.Div(decimal.NewFromInt(b.count)).Round(0).IntPart()

		m := contracts.YearlyMetric{
			Year:                     year,
			AverageHomeSale:          avg,
			PriorYearAverageHomeSale: prior,
			PercentChangeVsPriorYear: PercentChange(avg, prior),
		}
		out = append(out, m)

		p := avg
		prior = &p
	}

	return out
}

// PercentChange returns (current - prior) / prior * 100 rounded to 2 decimals,
// or an invalid NullDecimal when prior is nil or zero.
func PercentChange(current int64, prior *int64) decimal.NullDecimal {
	if prior == nil || *prior == 0 {
		return decimal.NullDecimal{}
	}

	cur := decimal.NewFromInt(current)
	base := decimal.NewFromInt(*prior)
	pct := cur.Sub(base).Div(base).Mul(hundred).Round(2)

	return decimal.NewNullDecimal(pct)
}
