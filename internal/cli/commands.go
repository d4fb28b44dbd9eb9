package cli

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type clientFactory func() *apiClient

func convertCommand(client clientFactory) *cobra.Command {
	var from, to, amount string

	cmd := &cobra.Command{
		Use:     "convert",
		Short:   "Convert an amount using the latest stored rate",
		Example: "fxconv convert --from USD --to TWD --amount 100",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			var resp dto.ConversionResponse
			req := dto.ConvertRequest{From: from, To: to, Amount: &value}
			if err := client().do(cmd.Context(), http.MethodPost, apiPrefix+"/exchange-rates/convert", nil, req, &resp); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s (rate %s)\n",
				resp.Amount, resp.From, resp.ConvertedAmount, resp.To, resp.Rate)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source currency code")
	cmd.Flags().StringVar(&to, "to", "", "Target currency code")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to convert")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func ratesCommand(client clientFactory) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "List the latest rates for a base currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BaseRatesResponse
			query := map[string]string{"baseCurrency": base}
			if err := client().do(cmd.Context(), http.MethodGet, apiPrefix+"/exchange-rates/rates", query, nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resp.LastUpdate == nil {
				fmt.Fprintf(out, "No rates stored for %s\n", resp.BaseCurrency)
				return nil
			}
			fmt.Fprintf(out, "Rates for %s (last update %s)\n", resp.BaseCurrency, resp.LastUpdate.Format(time.RFC3339))

			codes := make([]string, 0, len(resp.Rates))
			for code := range resp.Rates {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				fmt.Fprintf(out, "%s\t%s\n", code, resp.Rates[code])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "USD", "Base currency code")
	return cmd
}

func statusCommand(client clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show synchronization status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SyncStatusResponse
			if err := client().do(cmd.Context(), http.MethodGet, apiPrefix+"/exchange-rates/status", nil, nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Currencies:    %d\n", resp.SupportedCurrencies)
			fmt.Fprintf(out, "Records:       %d / %d (%.1f%%)\n", resp.TotalRecords, resp.ExpectedRecords, resp.DataCompleteness)
			if resp.LastSyncTime == nil {
				fmt.Fprintln(out, "Last sync:     never")
				return nil
			}
			fmt.Fprintf(out, "Last sync:     %s\n", resp.LastSyncTime.Format(time.RFC3339))
			if resp.DataAge != nil {
				age := time.Duration(*resp.DataAge * float64(time.Second)).Round(time.Second)
				fmt.Fprintf(out, "Data age:      %s\n", age)
			}
			return nil
		},
	}
}

func syncCommand(client clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run a synchronization pass on the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.SyncNowResponse
			if err := client().do(cmd.Context(), http.MethodPost, apiPrefix+"/exchange-rates/sync-now", nil, nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			d := resp.Details
			fmt.Fprintf(out, "%s: %d/%d pairs stored (%.1f%%) in %.1fs\n",
				resp.Message, d.SuccessCount, d.TotalPairs, d.SuccessRate, d.Duration)
			for _, e := range d.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			return nil
		},
	}
}
