package dataset

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/housedash/internal/contracts"
)

// Reshape flattens the wide table into one observation per (region, date column).
// Output order is input row order, then input column order. Unparsable date labels
// yield a zero Month and non-numeric cells an invalid Price; no row is dropped.
func Reshape(wide *contracts.WideTable) []contracts.Observation {
	if wide == nil {
		return nil
	}

	// 라벨은 한 번만 파싱
	months := make([]contracts.Month, len(wide.DateLabels))
	for i, label := range wide.DateLabels {
		months[i], _ = contracts.ParseMonth(label)
	}

	rows := make([]contracts.Observation, 0, len(wide.Records)*len(wide.DateLabels))
	for _, rec := range wide.Records {
		for i := range wide.DateLabels {
			var cell string
			if i < len(rec.Cells) {
				cell = rec.Cells[i]
			}
			rows = append(rows, contracts.Observation{
				RegionName: rec.RegionName,
				Date:       months[i],
				Price:      ParsePrice(cell),
			})
		}
	}

	return rows
}

var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	"-":    true,
}

// ParsePrice coerces a cell to a decimal, returning an invalid NullDecimal for
// anything non-numeric. A leading "$" and thousands separators are tolerated.
func ParsePrice(cell string) decimal.NullDecimal {
	s := strings.TrimSpace(cell)
	if missingTokens[strings.ToLower(s)] {
		return decimal.NullDecimal{}
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
