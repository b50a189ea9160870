package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/liamashdown/holderscope/internal/market"
)

//nolint:gochecknoglobals // Cobra boilerplate
var marketsCmd = &cobra.Command{
	Use:   "markets <event-url-or-slug>",
	Short: "List the tradable markets of an event",
	Long: `List the tradable binary markets of a Polymarket event.

Use the index or condition id from this list with analyze --market.

Examples:
  holderscope markets https://polymarket.com/event/fed-decision-in-december
  holderscope markets fed-decision-in-december`,
	Args: cobra.ExactArgs(1),
	RunE: runMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(marketsCmd)
}

func runMarkets(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.PrimaryTimeout)
	defer cancel()

	event, err := a.resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	printMarkets(os.Stdout, event)
	return nil
}

func printMarkets(w io.Writer, event *market.Event) {
	fmt.Fprintf(w, "%s (%s)\n\n", event.Title, event.Slug)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCondition ID\tMarket\tPrices")
	for _, m := range event.Markets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.Index, m.ConditionID, m.Label(), pricesText(m))
	}
	_ = tw.Flush()
}

func pricesText(m market.Market) string {
	s := ""
	for i, p := range m.Prices {
		if i > 0 {
			s += " / "
		}
		name := ""
		if i < len(m.Outcomes) {
			name = m.Outcomes[i] + " "
		}
		s += name + p
	}
	return s
}
