package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"shepherd/internal/domain/engagement"
	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"
)

type mockFirstTimerStore struct {
	records    []firsttimer.Record
	start, end string
}

func (m *mockFirstTimerStore) ListByVisitDate(_ context.Context, start, end string) ([]firsttimer.Record, error) {
	m.start, m.end = start, end
	return m.records, nil
}

type mockFollowUpStore struct {
	taxonomy followup.Taxonomy
}

func (m *mockFollowUpStore) List(_ context.Context) (followup.Taxonomy, error) {
	return m.taxonomy, nil
}

func visit(month time.Month, status string) firsttimer.Record {
	return firsttimer.Record{Name: "V", VisitDate: time.Date(2026, month, 11, 10, 0, 0, 0, time.UTC), Status: status}
}

// TestQueryGetFirstTimerReport_DefaultTaxonomy verifies the stock taxonomy is used when none is stored.
func TestQueryGetFirstTimerReport_DefaultTaxonomy(t *testing.T) {
	store := &mockFirstTimerStore{records: []firsttimer.Record{
		visit(time.February, followup.Integrated),
		visit(time.February, followup.NotContacted),
		visit(time.April, followup.Integrated),
		visit(time.April, followup.Visiting),
	}}

	res, err := QueryGetFirstTimerReport(context.Background(), GetFirstTimerReportQuery{Year: 2026, Month: time.April}, GetFirstTimerReportDeps{
		FirstTimerStore: store,
		FollowUpStore:   &mockFollowUpStore{},
	})
	if err != nil {
		t.Fatalf("QueryGetFirstTimerReport: %v", err)
	}

	if store.start != "2026-01-01" || store.end != "2026-12-31" {
		t.Errorf("range = %s..%s, want 2026", store.start, store.end)
	}
	if len(res.Taxonomy) != 5 {
		t.Errorf("taxonomy has %d statuses, want default 5", len(res.Taxonomy))
	}
	if res.Annual.Total != 4 || res.Annual.IntegrationRate != 50 {
		t.Errorf("annual total/integration = %d/%v, want 4/50", res.Annual.Total, res.Annual.IntegrationRate)
	}
	if res.Annual.Peak.Month != time.February {
		t.Errorf("peak = %v, want February (earliest of the ties)", res.Annual.Peak.Month)
	}
	if res.Month == nil || res.Month.Total != 2 || res.Month.Count(followup.Visiting) != 1 {
		t.Errorf("April breakdown = %+v, want 2 records incl. 1 visiting", res.Month)
	}
}

// TestQueryGetFirstTimerReport_CustomTaxonomy verifies admin labels drive the report.
func TestQueryGetFirstTimerReport_CustomTaxonomy(t *testing.T) {
	custom := followup.NewTaxonomy("Welcomed", followup.Integrated)
	store := &mockFirstTimerStore{records: []firsttimer.Record{
		visit(time.May, "Welcomed"),
		visit(time.May, followup.Contacted), // not in the custom taxonomy
	}}

	res, err := QueryGetFirstTimerReport(context.Background(), GetFirstTimerReportQuery{Year: 2026}, GetFirstTimerReportDeps{
		FirstTimerStore: store,
		FollowUpStore:   &mockFollowUpStore{taxonomy: custom},
	})
	if err != nil {
		t.Fatalf("QueryGetFirstTimerReport: %v", err)
	}
	if res.Month != nil {
		t.Error("Month should be nil when no month is requested")
	}
	if res.Annual.Total != 1 || res.Annual.Skipped.UnknownStatus != 1 {
		t.Errorf("total/unknown = %d/%d, want 1/1", res.Annual.Total, res.Annual.Skipped.UnknownStatus)
	}
	if len(res.Annual.Distribution) != 2 || res.Annual.Distribution[0].Label != "Welcomed" {
		t.Errorf("distribution = %+v, want Welcomed first", res.Annual.Distribution)
	}
}

// TestQueryGetFirstTimerReport_InvalidPeriod verifies period validation errors surface.
func TestQueryGetFirstTimerReport_InvalidPeriod(t *testing.T) {
	deps := GetFirstTimerReportDeps{FirstTimerStore: &mockFirstTimerStore{}, FollowUpStore: &mockFollowUpStore{}}

	if _, err := QueryGetFirstTimerReport(context.Background(), GetFirstTimerReportQuery{Year: 0}, deps); !errors.Is(err, engagement.ErrInvalidYear) {
		t.Errorf("year 0: err = %v, want ErrInvalidYear", err)
	}
	if _, err := QueryGetFirstTimerReport(context.Background(), GetFirstTimerReportQuery{Year: 2026, Month: 13}, deps); !errors.Is(err, engagement.ErrInvalidMonth) {
		t.Errorf("month 13: err = %v, want ErrInvalidMonth", err)
	}
}
