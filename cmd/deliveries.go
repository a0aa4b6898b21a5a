package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "Track promised deliveries",
}

var deliveriesAddCmd = &cobra.Command{
	Use:   "add <customer-id>",
	Short: "Record a promised delivery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		description, _ := cmd.Flags().GetString("description")
		promisedArg, _ := cmd.Flags().GetString("promised")

		promised, err := time.Parse("2006-01-02", promisedArg)
		if err != nil {
			return eris.Wrapf(err, "deliveries add: bad date %q (want YYYY-MM-DD)", promisedArg)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		c, err := st.GetCustomer(ctx, args[0])
		if err != nil {
			return err
		}
		if c == nil {
			return eris.Errorf("deliveries add: customer %s not found", args[0])
		}

		d, err := st.CreateDelivery(ctx, model.Delivery{
			CustomerID:  c.ID,
			Description: description,
			PromisedOn:  promised,
		})
		if err != nil {
			return eris.Wrap(err, "deliveries add")
		}
		fmt.Println(d.ID)
		return nil
	},
}

var deliveriesDoneCmd = &cobra.Command{
	Use:   "done <delivery-id>",
	Short: "Mark a delivery completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.MarkDelivered(ctx, args[0]); err != nil {
			return eris.Wrap(err, "deliveries done")
		}
		fmt.Printf("Delivered %s\n", args[0])
		return nil
	},
}

var deliveriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending deliveries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		pending, err := st.ListPendingDeliveries(ctx)
		if err != nil {
			return eris.Wrap(err, "deliveries list")
		}

		if len(pending) == 0 {
			fmt.Fprintln(os.Stderr, "No pending deliveries.")
			return nil
		}

		formatDeliveries(os.Stdout, pending)
		return nil
	},
}

func init() {
	deliveriesAddCmd.Flags().String("description", "", "what was promised (required)")
	deliveriesAddCmd.Flags().String("promised", "", "promised date, YYYY-MM-DD (required)")
	_ = deliveriesAddCmd.MarkFlagRequired("description")
	_ = deliveriesAddCmd.MarkFlagRequired("promised")

	deliveriesCmd.AddCommand(deliveriesAddCmd)
	deliveriesCmd.AddCommand(deliveriesDoneCmd)
	deliveriesCmd.AddCommand(deliveriesListCmd)
	rootCmd.AddCommand(deliveriesCmd)
}

func formatDeliveries(out io.Writer, pending []model.Delivery) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCUSTOMER\tDESCRIPTION\tPROMISED")
	for _, d := range pending {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncateID(d.ID),
			truncateID(d.CustomerID),
			d.Description,
			d.PromisedOn.Format("2006-01-02"),
		)
	}
	_ = w.Flush()
}
