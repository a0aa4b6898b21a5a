package model

import (
	"strings"
	"time"
)

// LeadStage classifies where a customer sits in the sales pipeline.
type LeadStage string

const (
	StageHot      LeadStage = "Hot"
	StageWarm     LeadStage = "Warm"
	StageCold     LeadStage = "Cold"
	StageLead     LeadStage = "Lead"
	StageScouting LeadStage = "Scouting"
)

// LeadStages lists all stages in pipeline order.
var LeadStages = []LeadStage{StageHot, StageWarm, StageCold, StageLead, StageScouting}

// ParseLeadStage matches a stage name case-insensitively. Returns false when
// the input names no known stage.
func ParseLeadStage(s string) (LeadStage, bool) {
	for _, stage := range LeadStages {
		if strings.EqualFold(s, string(stage)) {
			return stage, true
		}
	}
	return "", false
}

// Contact is a person at a customer account. Only the first contact is
// surfaced on a route stop.
type Contact struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Customer is one account in the rep's book. Address and Zip are optional;
// City and State are expected but may carry incidental whitespace from
// imported data.
type Customer struct {
	ID         string     `json:"id"`
	Active     bool       `json:"active"`
	Name       string     `json:"name"`
	Company    string     `json:"company,omitempty"`
	Address    string     `json:"address,omitempty"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Zip        string     `json:"zip,omitempty"`
	LeadStage  LeadStage  `json:"lead_stage"`
	Contacts   []Contact  `json:"contacts,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	FollowUpOn *time.Time `json:"follow_up_on,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PrimaryContact returns the first contact, or nil when none is recorded.
func (c *Customer) PrimaryContact() *Contact {
	if len(c.Contacts) == 0 {
		return nil
	}
	return &c.Contacts[0]
}

// Delivery is a pending product delivery promised to a customer.
type Delivery struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	Description string     `json:"description"`
	PromisedOn  time.Time  `json:"promised_on"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Pending reports whether the delivery has not yet been completed.
func (d *Delivery) Pending() bool {
	return d.DeliveredAt == nil
}
