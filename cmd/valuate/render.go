package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

func render(w io.Writer, v *model.Valuation, showHoldings bool) {
	base := v.BaseCurrency.String()

	if showHoldings {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{
			"Account",
			"Ticker",
			"Shares",
			"Avg Buy (" + base + ")",
			"Last Price (" + base + ")",
			"Value (" + base + ")",
			"P/L (" + base + ")",
			"P/L %",
		})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
		})

		for _, h := range v.Holdings {
			table.Append([]string{
				h.Name,
				h.Ticker,
				h.Shares.StringFixed(4),
				h.AveragePrice.StringFixed(2),
				h.LatestPrice.StringFixed(2),
				h.Value.StringFixed(2),
				h.ProfitLoss.StringFixed(2),
				h.ProfitLossPercentage.StringFixed(2) + "%",
			})
		}
		table.Render()
		fmt.Fprintln(w)
	}

	s := v.Summary
	fmt.Fprintf(w, "%-40s %14s\n", "Total Portfolio Value ("+base+")", s.TotalPortfolioValue.StringFixed(2))
	fmt.Fprintf(w, "%-40s %14s\n", "Total Cost Basis ("+base+")", s.TotalCostBasis.StringFixed(2))
	fmt.Fprintf(w, "%-40s %14s\n", "Total Profit/Loss ("+base+")", s.TotalProfitLoss.StringFixed(2))
	fmt.Fprintf(w, "%-40s %14s%%\n", "Profit/Loss Percentage", s.ProfitLossPercentage.StringFixed(2))

	if v.DroppedTransactions > 0 || len(v.Warnings) > 0 {
		fmt.Fprintf(w, "\n%d transaction(s) dropped, %d warning(s)\n", v.DroppedTransactions, len(v.Warnings))
		for _, msg := range v.Warnings {
			fmt.Fprintln(w, "  -", msg)
		}
	}
}
