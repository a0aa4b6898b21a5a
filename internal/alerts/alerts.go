// Package alerts aggregates follow-up, delivery, and lead-staleness signals
// across the customer book into a dashboard snapshot.
package alerts

import (
	"fmt"
	"time"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertFollowUpDue     AlertType = "follow_up_due"
	AlertDeliveryOverdue AlertType = "delivery_overdue"
	AlertStaleLead       AlertType = "stale_lead"
)

// Alert flags one customer needing attention.
type Alert struct {
	Type       AlertType `json:"type"`
	Severity   string    `json:"severity"`
	CustomerID string    `json:"customer_id"`
	Customer   string    `json:"customer"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Config bounds the evaluation windows.
type Config struct {
	// FollowUpWindowDays flags follow-ups due within this many days.
	FollowUpWindowDays int
	// StaleHotDays flags Hot and Warm customers untouched for this long.
	StaleHotDays int
}

// DefaultConfig matches a weekly field-visit cadence.
func DefaultConfig() Config {
	return Config{FollowUpWindowDays: 7, StaleHotDays: 30}
}

// Evaluator checks customer and delivery snapshots against the configured
// windows. It is a pure aggregation; callers fetch the snapshots.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an Evaluator with the given config. Zero window
// values fall back to defaults.
func NewEvaluator(cfg Config) *Evaluator {
	def := DefaultConfig()
	if cfg.FollowUpWindowDays <= 0 {
		cfg.FollowUpWindowDays = def.FollowUpWindowDays
	}
	if cfg.StaleHotDays <= 0 {
		cfg.StaleHotDays = def.StaleHotDays
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate returns alerts for due follow-ups, overdue deliveries, and stale
// Hot/Warm leads as of now. Inactive customers never alert.
func (e *Evaluator) Evaluate(customers []model.Customer, deliveries []model.Delivery, now time.Time) []Alert {
	var alerts []Alert
	now = now.UTC()

	byID := make(map[string]model.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	followUpCutoff := now.AddDate(0, 0, e.cfg.FollowUpWindowDays)
	staleCutoff := now.AddDate(0, 0, -e.cfg.StaleHotDays)

	for _, c := range customers {
		if !c.Active {
			continue
		}

		if c.FollowUpOn != nil && !c.FollowUpOn.After(followUpCutoff) {
			severity := "medium"
			if c.FollowUpOn.Before(now) {
				severity = "high"
			}
			alerts = append(alerts, Alert{
				Type:       AlertFollowUpDue,
				Severity:   severity,
				CustomerID: c.ID,
				Customer:   c.Name,
				Message:    fmt.Sprintf("follow-up with %s due %s", c.Name, c.FollowUpOn.Format("2006-01-02")),
				Timestamp:  now,
			})
		}

		if (c.LeadStage == model.StageHot || c.LeadStage == model.StageWarm) && c.UpdatedAt.Before(staleCutoff) {
			alerts = append(alerts, Alert{
				Type:       AlertStaleLead,
				Severity:   "medium",
				CustomerID: c.ID,
				Customer:   c.Name,
				Message: fmt.Sprintf("%s lead %s untouched since %s",
					c.LeadStage, c.Name, c.UpdatedAt.Format("2006-01-02")),
				Timestamp: now,
			})
		}
	}

	for _, d := range deliveries {
		if !d.Pending() || !d.PromisedOn.Before(now) {
			continue
		}
		c, ok := byID[d.CustomerID]
		if ok && !c.Active {
			continue
		}
		name := d.CustomerID
		if ok {
			name = c.Name
		}
		alerts = append(alerts, Alert{
			Type:       AlertDeliveryOverdue,
			Severity:   "high",
			CustomerID: d.CustomerID,
			Customer:   name,
			Message: fmt.Sprintf("delivery %q for %s promised %s",
				d.Description, name, d.PromisedOn.Format("2006-01-02")),
			Timestamp: now,
		})
	}

	return alerts
}
