package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/liamashdown/holderscope/internal/holders"
)

// Format is an output format for Render
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (must be table, csv or json)", s)
}

// Render writes the report in the given format
func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatCSV:
		for _, s := range r.Sides {
			if err := WriteCSV(w, s.Holders); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		return WriteTable(w, r)
	}
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"rank", "side", "wallet", "name", "shares", "avg_price", "cur_price",
	"initial_value", "current_value", "market_pnl", "percent_pnl",
	"all_time_pnl", "all_time_pnl_source", "buys", "sells",
	"buy_volume", "buy_shares", "sell_volume", "sell_shares",
}

// WriteCSV writes one row per holder. Unknown all-time P&L is an empty cell.
func WriteCSV(w io.Writer, hs []holders.EnrichedHolder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, h := range hs {
		allTime := ""
		if h.AllTimePnL.Known {
			allTime = num(h.AllTimePnL.Value)
		}
		row := []string{
			strconv.Itoa(h.Rank),
			string(h.Market.Side),
			h.Wallet,
			h.Name,
			num(h.Position.Shares),
			num(h.Position.AvgPrice),
			num(h.Position.CurPrice),
			num(h.Position.InitialValue),
			num(h.Position.CurrentValue),
			num(h.MarketPnL),
			num(h.PercentPnL),
			allTime,
			string(h.AllTimePnL.Source),
			strconv.Itoa(h.Activity.Buys),
			strconv.Itoa(h.Activity.Sells),
			num(h.Activity.BuyVolume),
			num(h.Activity.BuyShares),
			num(h.Activity.SellVolume),
			num(h.Activity.SellShares),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTable writes the human-readable report
func WriteTable(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "%s\n", r.EventTitle)
	if r.Question != "" {
		fmt.Fprintf(w, "%s\n", r.Question)
	}
	fmt.Fprintf(w, "condition %s\n\n", r.ConditionID)

	for _, s := range r.Sides {
		fmt.Fprintf(w, "%s holders (%d", s.Side, len(s.Holders))
		if s.Skipped > 0 {
			fmt.Fprintf(w, ", %d skipped without wallet", s.Skipped)
		}
		fmt.Fprintln(w, ")")

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "#\tName\tShares\tEntry\tCurrent\tValue\tMarket P&L\tP&L %\tAll-Time P&L\tBuys/Sells\t")
		for _, h := range s.Holders {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t\n",
				h.Rank,
				h.Name,
				humanize.FormatFloat("#,###.", h.Position.Shares),
				price(h.Position.AvgPrice),
				price(h.Position.CurPrice),
				money(h.Position.CurrentValue),
				signedMoney(h.MarketPnL),
				fmt.Sprintf("%+.1f%%", h.PercentPnL),
				allTimeText(h.AllTimePnL),
				h.Activity.Buys, h.Activity.Sells,
			)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		if err := writeSummary(w, s.Summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintln(w)
	}

	if r.Comparison != nil {
		fmt.Fprintln(w, r.Comparison.Headline())
	}
	return nil
}

func writeSummary(w io.Writer, s OutcomeSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Holders analysed\t%d\n", s.Holders)
	fmt.Fprintf(tw, "  Total shares\t%s\n", humanize.FormatFloat("#,###.##", s.TotalShares))
	fmt.Fprintf(tw, "  Avg shares per holder\t%s\n", humanize.FormatFloat("#,###.##", s.AvgShares))
	fmt.Fprintf(tw, "  Weighted avg entry\t%s\n", price(s.WeightedAvgEntry))
	fmt.Fprintf(tw, "  Simple avg entry\t%s\n", price(s.SimpleAvgEntry))
	fmt.Fprintf(tw, "  Total value\t%s\n", money(s.TotalValue))
	fmt.Fprintf(tw, "  Value at purchase\t%s\n", money(s.ValueAtPurchase))
	fmt.Fprintf(tw, "  Avg all-time P&L\t%s\n", avgPnLText(s))
	if s.HasKnownPnL() {
		fmt.Fprintf(tw, "  Profitable\t%d/%d (%.0f%%)\n", s.Profitable, s.KnownPnL, s.WinRate*100)
	} else {
		fmt.Fprintf(tw, "  Profitable\tN/A\n")
	}
	return tw.Flush()
}

func allTimeText(p holders.AllTimePnL) string {
	if !p.Known {
		return "N/A"
	}
	s := signedMoney(p.Value)
	if p.LowConfidence() {
		s += "*"
	}
	return s
}

func money(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func signedMoney(v float64) string {
	if v > 0 {
		return "+" + money(v)
	}
	return money(v)
}

func price(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 3, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
