package dataset

import (
	"sort"
	"time"

	"github.com/wonny/housedash/internal/contracts"
)

// Table is the reshaped, read-only long-format dataset.
// It is built once and passed explicitly into every pipeline call.
type Table struct {
	source      string
	loadedAt    time.Time
	dateColumns int
	rows        []contracts.Observation
	regions     []string         // first-encounter order
	index       map[string][]int // region -> row positions in reshape order
}

// NewTable reshapes wide and indexes the result by region
func NewTable(wide *contracts.WideTable, source string) *Table {
	rows := Reshape(wide)

	t := &Table{
		source:   source,
		loadedAt: time.Now(),
		rows:     rows,
		index:    make(map[string][]int),
	}
	if wide != nil {
		t.dateColumns = len(wide.DateLabels)
	}

	for i, row := range rows {
		if _, seen := t.index[row.RegionName]; !seen {
			t.regions = append(t.regions, row.RegionName)
		}
		t.index[row.RegionName] = append(t.index[row.RegionName], i)
	}

	// 날짜 컬럼이 없는 지역도 선택 목록에는 나타나야 함
	if wide != nil && t.dateColumns == 0 {
		for _, rec := range wide.Records {
			if _, seen := t.index[rec.RegionName]; !seen {
				t.regions = append(t.regions, rec.RegionName)
				t.index[rec.RegionName] = nil
			}
		}
	}

	return t
}

// Source returns where the table was loaded from
func (t *Table) Source() string {
	return t.source
}

// LoadedAt returns when the table was built
func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// Len returns the number of observations
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns every observation in reshape order. The slice must not be modified.
func (t *Table) Rows() []contracts.Observation {
	return t.rows
}

// Regions returns region names in first-encounter order
func (t *Table) Regions() []string {
	out := make([]string, len(t.regions))
	copy(out, t.regions)
	return out
}

// HasRegion reports whether the region exists
func (t *Table) HasRegion(region string) bool {
	_, ok := t.index[region]
	return ok
}

// RegionRows returns the region's observations in reshape order, including undated ones
func (t *Table) RegionRows(region string) ([]contracts.Observation, error) {
	idx, ok := t.index[region]
	if !ok {
		return nil, contracts.ErrRegionNotFound
	}

	out := make([]contracts.Observation, len(idx))
	for i, pos := range idx {
		out[i] = t.rows[pos]
	}
	return out, nil
}

// Series returns the region's dated observations in chronological order.
// Rows with a missing Date are excluded.
func (t *Table) Series(region string) ([]contracts.Observation, error) {
	rows, err := t.RegionRows(region)
	if err != nil {
		return nil, err
	}

	series := rows[:0]
	for _, row := range rows {
		if row.HasDate() {
			series = append(series, row)
		}
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	return series, nil
}
