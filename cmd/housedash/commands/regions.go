package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/housedash/internal/contracts"
)

// regionsCmd lists regions
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions in dataset order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		regions, err := d.service.Regions()
		if err != nil {
			return err
		}
		printRegions(cmd.OutOrStdout(), regions)
		return nil
	},
}

// metricsCmd prints yearly metrics of one region
var metricsCmd = &cobra.Command{
	Use:   "metrics <region>",
	Short: "Print yearly average, prior year average and percent change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		yearly, err := d.service.YearlyMetrics(args[0])
		if err != nil {
			return err
		}
		printYearly(cmd.OutOrStdout(), args[0], yearly)
		return nil
	},
}

// rankCmd prints the global leaderboard
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Print top and bottom regions by all-time mean price",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		board, err := d.service.Leaderboard()
		if err != nil {
			return err
		}
		printRanking(cmd.OutOrStdout(), fmt.Sprintf("Top %d", d.cfg.Ranking.Size), board.Top)
		printRanking(cmd.OutOrStdout(), fmt.Sprintf("Bottom %d", d.cfg.Ranking.Size), board.Bottom)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(rankCmd)
}

func printRegions(w io.Writer, regions []string) {
	PrintHeader(w, fmt.Sprintf("Regions (%d)", len(regions)))
	for i, r := range regions {
		fmt.Fprintf(w, "   %d. %s\n", i+1, r)
	}
}

func printYearly(w io.Writer, region string, yearly []contracts.YearlyMetric) {
	PrintHeader(w, fmt.Sprintf("Yearly metrics - %s", region))

	widths := []int{6, 18, 18, 10}
	PrintTableHeader(w, []string{"Year", "Average", "Prior Year", "Change %"}, widths)
	for _, m := range yearly {
		prior := "-"
		if m.PriorYearAverageHomeSale != nil {
			prior = fmt.Sprintf("%d", *m.PriorYearAverageHomeSale)
		}
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", m.Year),
			fmt.Sprintf("%d", m.AverageHomeSale),
			prior,
			orDash(m.PercentChangeVsPriorYear.Decimal.StringFixed(2), m.PercentChangeVsPriorYear.Valid),
		}, widths)
	}
}

func printRanking(w io.Writer, title string, entries []contracts.RankingEntry) {
	PrintHeader(w, title)

	widths := []int{4, 32, 14}
	PrintTableHeader(w, []string{"#", "Region", "Average"}, widths)
	for _, e := range entries {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", e.Rank),
			e.RegionName,
			e.AverageValue.StringFixed(2),
		}, widths)
	}
}
