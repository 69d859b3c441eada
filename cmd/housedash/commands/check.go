package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/housedash/internal/contracts"
)

var errUnusable = errors.New("dataset is not usable")

// checkCmd prints the dataset quality snapshot
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check dataset coverage (missing dates and prices)",
	Long: `Loads the dataset and prints its coverage.
Exits non-zero when the dataset has no usable prices.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context())
		if err != nil {
			return err
		}
		q, err := d.service.Quality()
		if err != nil {
			return err
		}
		return printQuality(cmd.OutOrStdout(), q)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func printQuality(w io.Writer, q contracts.DatasetQuality) error {
	PrintHeader(w, "Dataset quality")

	const kw = 16
	PrintKeyValue(w, "Source", q.Source, kw)
	PrintKeyValue(w, "Regions", fmt.Sprintf("%d", q.Regions), kw)
	PrintKeyValue(w, "Date columns", fmt.Sprintf("%d", q.DateColumns), kw)
	PrintKeyValue(w, "Observations", fmt.Sprintf("%d", q.Observations), kw)
	PrintKeyValue(w, "Missing dates", fmt.Sprintf("%d", q.MissingDates), kw)
	PrintKeyValue(w, "Missing prices", fmt.Sprintf("%d", q.MissingPrices), kw)
	PrintKeyValue(w, "Price coverage", fmt.Sprintf("%.1f%%", q.PriceCoverage*100), kw)
	PrintKeyValue(w, "Range", fmt.Sprintf("%s ~ %s", orDash(q.FirstMonth.String(), !q.FirstMonth.IsZero()), orDash(q.LastMonth.String(), !q.LastMonth.IsZero())), kw)
	PrintSeparator(w)

	if len(q.UnpricedRegions) > 0 {
		PrintWarning(w, fmt.Sprintf("%d regions without any price: %s", len(q.UnpricedRegions), strings.Join(q.UnpricedRegions, ", ")))
	}
	if !q.IsUsable() {
		PrintError(w, "Dataset has no usable prices")
		return errUnusable
	}

	PrintSuccess(w, "Dataset usable")
	return nil
}
