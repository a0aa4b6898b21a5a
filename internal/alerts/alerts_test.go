package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

func alertTypes(alerts []Alert) []AlertType {
	types := make([]AlertType, len(alerts))
	for i, a := range alerts {
		types[i] = a.Type
	}
	return types
}

func TestEvaluateFollowUps(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -2)
	soon := now.AddDate(0, 0, 3)
	distant := now.AddDate(0, 0, 30)

	customers := []model.Customer{
		{ID: "c1", Active: true, Name: "Overdue Co", FollowUpOn: &overdue, UpdatedAt: now},
		{ID: "c2", Active: true, Name: "Soon Co", FollowUpOn: &soon, UpdatedAt: now},
		{ID: "c3", Active: true, Name: "Distant Co", FollowUpOn: &distant, UpdatedAt: now},
		{ID: "c4", Active: false, Name: "Inactive Co", FollowUpOn: &overdue, UpdatedAt: now},
	}

	got := NewEvaluator(DefaultConfig()).Evaluate(customers, nil, now)
	require.Len(t, got, 2)

	assert.Equal(t, "c1", got[0].CustomerID)
	assert.Equal(t, "high", got[0].Severity)
	assert.Equal(t, "c2", got[1].CustomerID)
	assert.Equal(t, "medium", got[1].Severity)
}

func TestEvaluateStaleLeads(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	stale := now.AddDate(0, 0, -45)

	customers := []model.Customer{
		{ID: "c1", Active: true, Name: "Stale Hot", LeadStage: model.StageHot, UpdatedAt: stale},
		{ID: "c2", Active: true, Name: "Stale Warm", LeadStage: model.StageWarm, UpdatedAt: stale},
		{ID: "c3", Active: true, Name: "Stale Cold", LeadStage: model.StageCold, UpdatedAt: stale},
		{ID: "c4", Active: true, Name: "Fresh Hot", LeadStage: model.StageHot, UpdatedAt: now},
	}

	got := NewEvaluator(DefaultConfig()).Evaluate(customers, nil, now)
	require.Len(t, got, 2)
	assert.Equal(t, []AlertType{AlertStaleLead, AlertStaleLead}, alertTypes(got))
	assert.Equal(t, "c1", got[0].CustomerID)
	assert.Equal(t, "c2", got[1].CustomerID)
}

func TestEvaluateOverdueDeliveries(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	delivered := now.AddDate(0, 0, -1)

	customers := []model.Customer{
		{ID: "c1", Active: true, Name: "Acme Feed", UpdatedAt: now},
		{ID: "c2", Active: false, Name: "Closed Co", UpdatedAt: now},
	}
	deliveries := []model.Delivery{
		{ID: "d1", CustomerID: "c1", Description: "sample kit", PromisedOn: now.AddDate(0, 0, -3)},
		{ID: "d2", CustomerID: "c1", Description: "brochures", PromisedOn: now.AddDate(0, 0, 2)},
		{ID: "d3", CustomerID: "c1", Description: "done", PromisedOn: now.AddDate(0, 0, -3), DeliveredAt: &delivered},
		{ID: "d4", CustomerID: "c2", Description: "skip inactive", PromisedOn: now.AddDate(0, 0, -3)},
	}

	got := NewEvaluator(DefaultConfig()).Evaluate(customers, deliveries, now)
	require.Len(t, got, 1)
	assert.Equal(t, AlertDeliveryOverdue, got[0].Type)
	assert.Equal(t, "high", got[0].Severity)
	assert.Contains(t, got[0].Message, "sample kit")
	assert.Equal(t, "Acme Feed", got[0].Customer)
}

func TestEvaluatorZeroConfigUsesDefaults(t *testing.T) {
	t.Parallel()
	e := NewEvaluator(Config{})
	assert.Equal(t, 7, e.cfg.FollowUpWindowDays)
	assert.Equal(t, 30, e.cfg.StaleHotDays)
}

func TestEvaluateEmptyBook(t *testing.T) {
	t.Parallel()
	got := NewEvaluator(DefaultConfig()).Evaluate(nil, nil, time.Now())
	assert.Empty(t, got)
}
