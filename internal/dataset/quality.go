package dataset

import (
	"github.com/wonny/housedash/internal/contracts"
)

// Quality computes a coverage snapshot of the table
func (t *Table) Quality() contracts.DatasetQuality {
	q := contracts.DatasetQuality{
		Source:          t.source,
		LoadedAt:        t.loadedAt,
		Regions:         len(t.regions),
		DateColumns:     t.dateColumns,
		Observations:    len(t.rows),
		UnpricedRegions: []string{},
	}

	priced := make(map[string]bool, len(t.regions))
	for _, row := range t.rows {
		if !row.HasDate() {
			q.MissingDates++
		} else {
			if q.FirstMonth.IsZero() || row.Date.Before(q.FirstMonth) {
				q.FirstMonth = row.Date
			}
			if q.LastMonth.IsZero() || q.LastMonth.Before(row.Date) {
				q.LastMonth = row.Date
			}
		}

		if !row.Price.Valid {
			q.MissingPrices++
			continue
		}
		priced[row.RegionName] = true
	}

	for _, region := range t.regions {
		if !priced[region] {
			q.UnpricedRegions = append(q.UnpricedRegions, region)
		}
	}

	if q.Observations > 0 {
		q.PriceCoverage = float64(q.Observations-q.MissingPrices) / float64(q.Observations)
	}

	return q
}
