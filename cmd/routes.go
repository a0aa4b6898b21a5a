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

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/store"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Save and reuse planning configurations",
	Long:  "A saved route is a snapshot of home, mode, filters and selection. Loading restores the snapshot; it never carries a computed itinerary, so plan again to get one.",
}

// -- routes save --

var routesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Snapshot a planning configuration under a name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name, _ := cmd.Flags().GetString("name")

		req, err := buildRouteRequest(cmd, st)
		if err != nil {
			return err
		}

		sr, err := store.NewRouteBook(st).Save(ctx, name, req)
		if err != nil {
			return eris.Wrap(err, "routes save")
		}

		fmt.Printf("Saved %q (%s)\n", sr.Name, sr.ID)
		return nil
	},
}

// -- routes list --

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved routes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		routes, err := store.NewRouteBook(st).List(ctx)
		if err != nil {
			return eris.Wrap(err, "routes list")
		}

		if len(routes) == 0 {
			fmt.Fprintln(os.Stderr, "No saved routes.")
			return nil
		}

		formatSavedRoutes(os.Stdout, routes)
		return nil
	},
}

// -- routes load --

var routesLoadCmd = &cobra.Command{
	Use:   "load <route-id>",
	Short: "Show a saved route's planning configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		sr, err := store.NewRouteBook(st).Load(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "routes load")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sr); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run `fieldrep route plan --saved %s` to compute the itinerary.\n", sr.ID)
		return nil
	},
}

// -- routes delete --

var routesDeleteCmd = &cobra.Command{
	Use:   "delete <route-id>",
	Short: "Delete a saved route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Fprintf(os.Stderr, "Delete saved route %s? [y/N] ", args[0])
			var answer string
			_, _ = fmt.Fscanln(os.Stdin, &answer)
			if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
				fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := store.NewRouteBook(st).Delete(ctx, args[0]); err != nil {
			return eris.Wrap(err, "routes delete")
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	routesSaveCmd.Flags().String("name", "", "saved route name (required)")
	routesSaveCmd.Flags().String("home", "", "home base address")
	routesSaveCmd.Flags().String("mode", "outandback", "route mode (outandback, roundtrip)")
	routesSaveCmd.Flags().StringSlice("select", nil, "customer IDs to visit")
	routesSaveCmd.Flags().String("state", "", "state filter")
	routesSaveCmd.Flags().String("city", "", "city filter")
	routesSaveCmd.Flags().String("stage", "", "lead stage filter")
	routesSaveCmd.Flags().String("saved", "", "copy an existing saved route")
	_ = routesSaveCmd.MarkFlagRequired("name")

	routesDeleteCmd.Flags().Bool("yes", false, "skip confirmation prompt")

	routesCmd.AddCommand(routesSaveCmd)
	routesCmd.AddCommand(routesListCmd)
	routesCmd.AddCommand(routesLoadCmd)
	routesCmd.AddCommand(routesDeleteCmd)
	rootCmd.AddCommand(routesCmd)
}

// formatSavedRoutes writes a tabular saved-route list to w.
func formatSavedRoutes(out io.Writer, routes []model.SavedRoute) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODE\tSTOPS\tHOME\tCREATED")
	for _, sr := range routes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			sr.ID,
			sr.Name,
			sr.Request.Mode,
			len(sr.Request.Selected),
			sr.Request.HomeAddress,
			sr.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}
