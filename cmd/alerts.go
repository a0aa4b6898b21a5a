package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldrep-cli/internal/alerts"
	"github.com/sells-group/fieldrep-cli/internal/store"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show due follow-ups, overdue deliveries and stale leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		customers, err := st.ListCustomers(ctx, store.CustomerFilter{})
		if err != nil {
			return eris.Wrap(err, "alerts")
		}
		deliveries, err := st.ListPendingDeliveries(ctx)
		if err != nil {
			return eris.Wrap(err, "alerts")
		}

		evaluator := alerts.NewEvaluator(alerts.Config{
			FollowUpWindowDays: cfg.Alerts.FollowUpWindowDays,
			StaleHotDays:       cfg.Alerts.StaleHotDays,
		})
		found := evaluator.Evaluate(customers, deliveries, time.Now())

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(found)
		}

		if len(found) == 0 {
			fmt.Println("Nothing needs attention.")
			return nil
		}

		formatAlerts(os.Stdout, found)
		return nil
	},
}

func init() {
	alertsCmd.Flags().Bool("json", false, "output JSON")
	rootCmd.AddCommand(alertsCmd)
}

// formatAlerts writes a tabular alert list to w.
func formatAlerts(out io.Writer, found []alerts.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEVERITY\tTYPE\tCUSTOMER\tDETAIL")
	for _, a := range found {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Severity, a.Type, a.Customer, a.Message)
	}
	_ = w.Flush()
}
