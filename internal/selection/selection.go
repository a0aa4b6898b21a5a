// Package selection holds the working set of customers eligible for a
// route: region/city/stage filtering, the mutable ID selection, and the
// address resolution used by the routing provider.
package selection

import (
	"sort"
	"strings"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// Filter keeps only active customers and applies each filter that is not
// the All sentinel. City comparison trims incidental whitespace carried by
// imported address data.
func Filter(customers []model.Customer, state, city, stage string) []model.Customer {
	out := make([]model.Customer, 0, len(customers))
	for _, c := range customers {
		if !c.Active {
			continue
		}
		if state != model.FilterAll && c.State != state {
			continue
		}
		if city != model.FilterAll && strings.TrimSpace(c.City) != city {
			continue
		}
		if stage != model.FilterAll && string(c.LeadStage) != stage {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AvailableStates returns the sorted, deduplicated, non-empty states among
// active customers. The All sentinel is a UI concern and is not included.
func AvailableStates(customers []model.Customer) []string {
	seen := make(map[string]struct{})
	for _, c := range customers {
		if !c.Active {
			continue
		}
		if s := strings.TrimSpace(c.State); s != "" {
			seen[s] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// AvailableCities returns the sorted, deduplicated, trimmed cities among
// active customers, scoped to the given state unless it is All. Callers must
// recompute this whenever the state filter changes; the companion
// RouteRequest.SetStateFilter resets any chosen city at that point.
func AvailableCities(customers []model.Customer, state string) []string {
	seen := make(map[string]struct{})
	for _, c := range customers {
		if !c.Active {
			continue
		}
		if state != model.FilterAll && c.State != state {
			continue
		}
		if city := strings.TrimSpace(c.City); city != "" {
			seen[city] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// SelectAllInState unions the current selection with every active customer
// in the given state. IDs already selected are not duplicated (the selection
// is a set).
func SelectAllInState(sel model.Selection, customers []model.Customer, state string) model.Selection {
	out := sel.Clone()
	for _, c := range customers {
		if !c.Active {
			continue
		}
		if state != model.FilterAll && c.State != state {
			continue
		}
		out[c.ID] = struct{}{}
	}
	return out
}

// Resolve maps the selection to customer records, preserving the order of
// the customer list. Inactive customers and stale IDs with no matching
// record are silently skipped.
func Resolve(sel model.Selection, customers []model.Customer) []model.Customer {
	out := make([]model.Customer, 0, len(sel))
	for _, c := range customers {
		if c.Active && sel.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
