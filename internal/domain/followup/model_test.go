package followup_test

import (
	"errors"
	"testing"

	"shepherd/internal/domain/followup"
)

// TestTaxonomy_Validate tests validation of a status taxonomy.
func TestTaxonomy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tax     followup.Taxonomy
		wantErr error
	}{
		{name: "default taxonomy", tax: followup.DefaultTaxonomy()},
		{name: "empty", tax: nil, wantErr: followup.ErrEmptyTaxonomy},
		{name: "blank label", tax: followup.Taxonomy{{Label: " "}}, wantErr: followup.ErrEmptyLabel},
		{name: "duplicate label", tax: followup.Taxonomy{{Label: "Contacted"}, {Label: "Contacted"}}, wantErr: followup.ErrDuplicateLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tax.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestTaxonomy_Lookup tests index, membership and label order.
func TestTaxonomy_Lookup(t *testing.T) {
	tax := followup.DefaultTaxonomy()

	if got := tax.Index(followup.Integrated); got != 3 {
		t.Errorf("Index(Integrated) = %d, want 3", got)
	}
	if tax.Contains("Baptised") {
		t.Error("Contains(Baptised) = true, want false")
	}
	if err := tax.Check("Baptised"); !errors.Is(err, followup.ErrUnknownStatus) {
		t.Errorf("Check error = %v, want ErrUnknownStatus", err)
	}
	if err := tax.Check(followup.Visiting); err != nil {
		t.Errorf("Check(Visiting) = %v", err)
	}

	labels := tax.Labels()
	want := []string{followup.NotContacted, followup.Contacted, followup.Visiting, followup.Integrated, followup.OptOut}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Labels()[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	if tax[0].ID != "not-contacted" {
		t.Errorf("default ID = %q, want not-contacted", tax[0].ID)
	}
}
