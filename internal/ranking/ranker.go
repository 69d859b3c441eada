package ranking

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/housedash/internal/contracts"
	"github.com/wonny/housedash/pkg/logger"
)

// DefaultSize is the leaderboard length when none is configured
const DefaultSize = 10

// Ranker builds the global leaderboard of all-time mean prices
// ⭐ SSOT: 랭킹 로직은 여기서만 (선택된 지역과 무관하게 전체 데이터 기준)
type Ranker struct {
	size   int
	logger *logger.Logger
}

// NewRanker creates a new ranker returning at most size entries per side
func NewRanker(size int, log *logger.Logger) *Ranker {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ranker{
		size:   size,
		logger: log,
	}
}

// Rank averages prices per region over every row and returns the top and bottom
// entries. Missing prices are excluded; regions without any valid price are not
// ranked. Ties are broken by region name ascending on both sides. When fewer than
// 2*size regions exist the two sides may share entries.
func (r *Ranker) Rank(rows []contracts.Observation) contracts.Leaderboard {
	means := regionMeans(rows)

	// 정렬은 반올림 전 평균 기준, 반올림은 출력 시에만
	desc := make([]regionMean, len(means))
	copy(desc, means)
	sort.SliceStable(desc, func(i, j int) bool {
		if c := desc[i].mean.Cmp(desc[j].mean); c != 0 {
			return c > 0
		}
		return desc[i].region < desc[j].region
	})

	asc := make([]regionMean, len(means))
	copy(asc, means)
	sort.SliceStable(asc, func(i, j int) bool {
		if c := asc[i].mean.Cmp(asc[j].mean); c != 0 {
			return c < 0
		}
		return asc[i].region < asc[j].region
	})

	board := contracts.Leaderboard{
		Top:    entries(truncate(desc, r.size)),
		Bottom: entries(truncate(asc, r.size)),
	}

	if len(board.Top) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"ranked_regions": len(means),
			"top_region":     board.Top[0].RegionName,
			"bottom_region":  board.Bottom[0].RegionName,
		}).Debug("Ranking completed")
	}

	return board
}

type regionMean struct {
	region string
	mean   decimal.Decimal
}

// regionMeans returns the unrounded mean valid price per region in
// first-encounter order. Regions without any valid price are skipped.
func regionMeans(rows []contracts.Observation) []regionMean {
	type acc struct {
		sum   decimal.Decimal
		count int64
	}

	var order []string
	sums := make(map[string]*acc)
	for _, row := range rows {
		if !row.Price.Valid {
			continue
		}
		a, ok := sums[row.RegionName]
		if !ok {
			a = &acc{}
			sums[row.RegionName] = a
			order = append(order, row.RegionName)
		}
		a.sum = a.sum.Add(row.Price.Decimal)
		a.count++
	}

	out := make([]regionMean, 0, len(order))
	for _, region := range order {
		a := sums[region]
		out = append(out, regionMean{
			region: region,
			mean:   a.sum.Div(decimal.NewFromInt(a.count)),
		})
	}
	return out
}

// entries numbers means 1..n in their current order and rounds them for output
func entries(means []regionMean) []contracts.RankingEntry {
	out := make([]contracts.RankingEntry, len(means))
	for i, m := range means {
		out[i] = contracts.RankingEntry{
			Rank:         i + 1,
			RegionName:   m.region,
			AverageValue: m.mean.Round(2),
		}
	}
	return out
}

func truncate(means []regionMean, n int) []regionMean {
	if len(means) > n {
		return means[:n]
	}
	return means
}
