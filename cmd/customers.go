package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/selection"
	"github.com/sells-group/fieldrep-cli/internal/store"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage the customer book",
}

// -- customers list --

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		state, _ := cmd.Flags().GetString("state")
		city, _ := cmd.Flags().GetString("city")
		stage, _ := cmd.Flags().GetString("stage")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		customers, err := st.ListCustomers(ctx, store.CustomerFilter{Limit: limit})
		if err != nil {
			return eris.Wrap(err, "customers list")
		}

		customers = selection.Filter(customers, orAll(state), orAll(city), orAll(stage))

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(customers)
		}

		if len(customers) == 0 {
			fmt.Fprintln(os.Stderr, "No customers found.")
			return nil
		}

		formatCustomersList(os.Stdout, customers)
		return nil
	},
}

// -- customers add --

var customersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")
		company, _ := cmd.Flags().GetString("company")
		address, _ := cmd.Flags().GetString("address")
		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		zip, _ := cmd.Flags().GetString("zip")
		stageArg, _ := cmd.Flags().GetString("stage")
		notes, _ := cmd.Flags().GetString("notes")

		stage, ok := model.ParseLeadStage(stageArg)
		if !ok {
			return eris.Errorf("unknown lead stage %q (use Hot, Warm, Cold, Lead or Scouting)", stageArg)
		}

		created, err := st.CreateCustomer(ctx, model.Customer{
			Active:    true,
			Name:      name,
			Company:   company,
			Address:   address,
			City:      city,
			State:     state,
			Zip:       zip,
			LeadStage: stage,
			Notes:     notes,
		})
		if err != nil {
			return eris.Wrap(err, "customers add")
		}

		zap.L().Info("customer added",
			zap.String("id", created.ID),
			zap.String("name", created.Name),
		)
		fmt.Println(created.ID)
		return nil
	},
}

// -- customers deactivate --

var customersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <customer-id>",
	Short: "Remove a customer from all lists without deleting the record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeactivateCustomer(ctx, args[0]); err != nil {
			return eris.Wrap(err, "customers deactivate")
		}
		fmt.Printf("Deactivated %s\n", args[0])
		return nil
	},
}

// -- customers import --

var customersImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the customer book from a JSON file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("file")
		warm, _ := cmd.Flags().GetBool("warm-geocode")

		f, err := os.Open(path)
		if err != nil {
			return eris.Wrap(err, "customers import: open file")
		}
		defer f.Close() //nolint:errcheck

		var customers []model.Customer
		if err := json.NewDecoder(f).Decode(&customers); err != nil {
			return eris.Wrap(err, "customers import: decode")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.ReplaceCustomers(ctx, customers); err != nil {
			return eris.Wrap(err, "customers import")
		}

		zap.L().Info("customer book replaced",
			zap.Int("count", len(customers)),
			zap.String("file", path),
		)

		if warm {
			provider, err := initProvider()
			if err != nil {
				return err
			}
			addrs := make([]string, 0, len(customers))
			for _, c := range customers {
				if c.Active {
					addrs = append(addrs, selection.ResolveAddress(c))
				}
			}
			provider.WarmGeocodeCache(ctx, addrs)
			zap.L().Info("geocode cache warmed", zap.Int("addresses", len(addrs)))
		}

		fmt.Printf("Imported %d customers\n", len(customers))
		return nil
	},
}

// -- customers export --

var customersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the customer book to JSON or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("file")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		customers, err := st.ListCustomers(ctx, store.CustomerFilter{})
		if err != nil {
			return eris.Wrap(err, "customers export")
		}

		switch {
		case strings.HasSuffix(path, ".xlsx"):
			err = exportCustomersXLSX(path, customers)
		default:
			err = exportCustomersJSON(path, customers)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d customers to %s\n", len(customers), path)
		return nil
	},
}

func init() {
	customersListCmd.Flags().String("state", "", "filter by state")
	customersListCmd.Flags().String("city", "", "filter by city")
	customersListCmd.Flags().String("stage", "", "filter by lead stage (Hot, Warm, Cold, Lead, Scouting)")
	customersListCmd.Flags().Int("limit", 0, "max number of customers to display")
	customersListCmd.Flags().Bool("json", false, "output JSON")

	customersAddCmd.Flags().String("name", "", "customer name (required)")
	customersAddCmd.Flags().String("company", "", "company name")
	customersAddCmd.Flags().String("address", "", "street address")
	customersAddCmd.Flags().String("city", "", "city")
	customersAddCmd.Flags().String("state", "", "state")
	customersAddCmd.Flags().String("zip", "", "zip code")
	customersAddCmd.Flags().String("stage", "Lead", "lead stage")
	customersAddCmd.Flags().String("notes", "", "free-form notes")
	_ = customersAddCmd.MarkFlagRequired("name")

	customersImportCmd.Flags().String("file", "", "path to JSON file (required)")
	customersImportCmd.Flags().Bool("warm-geocode", false, "pre-resolve customer addresses after import")
	_ = customersImportCmd.MarkFlagRequired("file")

	customersExportCmd.Flags().String("file", "customers.json", "output path (.json or .xlsx)")

	customersCmd.AddCommand(customersListCmd)
	customersCmd.AddCommand(customersAddCmd)
	customersCmd.AddCommand(customersDeactivateCmd)
	customersCmd.AddCommand(customersImportCmd)
	customersCmd.AddCommand(customersExportCmd)
	rootCmd.AddCommand(customersCmd)
}

// orAll maps an unset CLI filter flag to the open-filter sentinel.
func orAll(flag string) string {
	if flag == "" {
		return model.FilterAll
	}
	return flag
}

// formatCustomersList writes a tabular customer list to w.
func formatCustomersList(out io.Writer, customers []model.Customer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCITY\tSTATE\tSTAGE\tFOLLOW-UP")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t-----\t-----\t---------")

	for _, c := range customers {
		followUp := ""
		if c.FollowUpOn != nil {
			followUp = c.FollowUpOn.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(c.ID),
			c.Name,
			selection.DisplayCity(c.City),
			c.State,
			c.LeadStage,
			followUp,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
