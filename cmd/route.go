package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/planner"
	"github.com/sells-group/fieldrep-cli/internal/selection"
	"github.com/sells-group/fieldrep-cli/internal/store"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan visit routes",
}

var routePlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute an ordered itinerary for the selected customers",
	Long: "Orders the selected customers into a drivable trip. Out-and-back visits the " +
		"furthest customer first and finishes at the one closest to home; round-trip asks " +
		"the provider for an optimized loop that returns home.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		req, err := buildRouteRequest(cmd, st)
		if err != nil {
			return err
		}

		customers, err := st.ListCustomers(ctx, store.CustomerFilter{})
		if err != nil {
			return eris.Wrap(err, "route plan")
		}
		eligible := selection.Filter(customers, req.StateFilter, req.CityFilter, req.StageFilter)

		if all, _ := cmd.Flags().GetBool("all"); all {
			for _, c := range eligible {
				req.Selected[c.ID] = struct{}{}
			}
		}

		provider, err := initProvider()
		if err != nil {
			return err
		}

		it, err := planner.New(provider).ComputeRoute(ctx, req, customers)
		if err != nil {
			return err
		}

		stops := planner.BuildStopList(it, req.HomeAddress)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Itinerary *model.Itinerary `json:"itinerary"`
				Stops     []model.Stop     `json:"stops"`
			}{it, stops})
		}

		formatItinerary(os.Stdout, it, stops)
		return nil
	},
}

func init() {
	routePlanCmd.Flags().String("home", "", "home base address")
	routePlanCmd.Flags().String("mode", "outandback", "route mode (outandback, roundtrip)")
	routePlanCmd.Flags().StringSlice("select", nil, "customer IDs to visit")
	routePlanCmd.Flags().String("state", "", "filter eligible customers by state")
	routePlanCmd.Flags().String("city", "", "filter eligible customers by city")
	routePlanCmd.Flags().String("stage", "", "filter eligible customers by lead stage")
	routePlanCmd.Flags().Bool("all", false, "select every customer matching the filters")
	routePlanCmd.Flags().String("saved", "", "replay a saved route by ID")
	routePlanCmd.Flags().Bool("json", false, "output JSON")

	routeCmd.AddCommand(routePlanCmd)
	rootCmd.AddCommand(routeCmd)
}

// buildRouteRequest assembles the planning request from flags, or restores a
// saved snapshot when --saved is given. Flags given alongside --saved
// override the snapshot's home and mode.
func buildRouteRequest(cmd *cobra.Command, st store.Store) (model.RouteRequest, error) {
	home, _ := cmd.Flags().GetString("home")
	modeArg, _ := cmd.Flags().GetString("mode")
	ids, _ := cmd.Flags().GetStringSlice("select")
	state, _ := cmd.Flags().GetString("state")
	city, _ := cmd.Flags().GetString("city")
	stage, _ := cmd.Flags().GetString("stage")
	savedID, _ := cmd.Flags().GetString("saved")

	if savedID != "" {
		sr, err := store.NewRouteBook(st).Load(cmd.Context(), savedID)
		if err != nil {
			return model.RouteRequest{}, err
		}
		req := sr.Request
		if cmd.Flags().Changed("home") {
			req.HomeAddress = home
		}
		if cmd.Flags().Changed("mode") {
			mode, ok := model.ParseRouteMode(modeArg)
			if !ok {
				return model.RouteRequest{}, eris.Errorf("unknown route mode %q", modeArg)
			}
			req.Mode = mode
		}
		return req, nil
	}

	mode, ok := model.ParseRouteMode(modeArg)
	if !ok {
		return model.RouteRequest{}, eris.Errorf("unknown route mode %q (use outandback or roundtrip)", modeArg)
	}

	req := model.NewRouteRequest(home, mode)
	req.SetStateFilter(orAll(state))
	req.CityFilter = orAll(city)
	req.StageFilter = orAll(stage)
	for _, id := range ids {
		req.Selected[id] = struct{}{}
	}
	return req, nil
}

// formatItinerary writes the trip summary and stop list to w.
func formatItinerary(out io.Writer, it *model.Itinerary, stops []model.Stop) {
	modeLabel := "Out and back"
	if it.Mode == model.ModeRoundTrip {
		modeLabel = "Round trip"
	}
	fmt.Fprintf(out, "%s: %.1f mi, %d min, %d stops\n\n",
		modeLabel, it.TotalDistanceMiles, it.TotalTimeMinutes, len(it.OrderedCustomers))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STOP\tCUSTOMER\tADDRESS\tCONTACT")
	for _, s := range stops {
		switch s.Kind {
		case model.StopStart:
			_, _ = fmt.Fprintf(w, "START\t\t%s\t\n", s.Address)
		case model.StopEnd:
			_, _ = fmt.Fprintf(w, "END\t\t%s\t\n", s.Address)
		default:
			contact := ""
			if s.Customer != nil {
				if pc := s.Customer.PrimaryContact(); pc != nil {
					contact = pc.Name
					if pc.Phone != "" {
						contact += " " + pc.Phone
					}
				}
			}
			name := ""
			if s.Customer != nil {
				name = s.Customer.Name
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Position, name, s.Address, contact)
		}
	}
	_ = w.Flush()
}
