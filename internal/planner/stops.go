package planner

import (
	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/selection"
)

// BuildStopList renders an itinerary as an ordered stop list: a START
// marker at the home address, each customer as a numbered stop, and, only
// for round trips, an END marker back at home. Out-and-back routes end at
// the last customer stop; the physical drive home is not itemized.
func BuildStopList(it *model.Itinerary, homeAddress string) []model.Stop {
	stops := make([]model.Stop, 0, len(it.OrderedCustomers)+2)
	stops = append(stops, model.Stop{
		Kind:    model.StopStart,
		Address: homeAddress,
	})

	for i := range it.OrderedCustomers {
		c := it.OrderedCustomers[i]
		stops = append(stops, model.Stop{
			Kind:     model.StopCustomer,
			Position: i + 1,
			Address:  selection.ResolveAddress(c),
			Customer: &c,
		})
	}

	if it.Mode == model.ModeRoundTrip {
		stops = append(stops, model.Stop{
			Kind:    model.StopEnd,
			Address: homeAddress,
		})
	}
	return stops
}
