package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"forge/models"
	"forge/services"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Fetch and print the current USD exchange rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")

		rates := services.NewExchangeService(cfg, nil, nil, nil).FetchRates(cmd.Context())
		renderRates(os.Stdout, rates, amount)
		return nil
	},
}

func init() {
	ratesCmd.Flags().Float64("amount", 100, "USD amount to show converted into each currency")
}

func renderRates(w io.Writer, rates *models.ExchangeRates, amount float64) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Exchange rates (%s, %s)", rates.Source, rates.LastUpdated))
	t.AppendHeader(table.Row{"Currency", "Per USD", services.FormatAmount(amount, models.CurrencyUSD)})

	for _, c := range services.TrackedCurrencies() {
		t.AppendRow(table.Row{
			c,
			fmt.Sprintf("%.4f", rates.Rates[c]),
			services.FormatAmount(services.ConvertFromUSD(amount, c, rates.Rates), c),
		})
	}
	t.Render()

	if !rates.Success {
		fmt.Fprintf(w, "Upstream unavailable: %s\n", rates.Error)
	}
}
