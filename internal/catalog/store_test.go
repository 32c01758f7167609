package catalog

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/finemetal/bench/internal/migrations"
	"github.com/finemetal/bench/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return New(database)
}

func f(v float64) *float64 { return &v }

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil settings before first save, got %+v", got)
	}

	in := &pricing.SettingsInput{BaseWage: f(62.5)}
	if err := store.SaveSettings(in); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err = store.Settings()
	if err != nil {
		t.Fatalf("Settings after save: %v", err)
	}
	if got == nil || got.BaseWage == nil || *got.BaseWage != 62.5 {
		t.Fatalf("unexpected settings document: %+v", got)
	}

	// Upsert replaces the singleton.
	if err := store.SaveSettings(&pricing.SettingsInput{BaseWage: f(70)}); err != nil {
		t.Fatalf("SaveSettings upsert: %v", err)
	}
	got, err = store.Settings()
	if err != nil {
		t.Fatalf("Settings after upsert: %v", err)
	}
	if *got.BaseWage != 70 {
		t.Fatalf("BaseWage=%v, want 70", *got.BaseWage)
	}
}

func TestMaterialCRUD(t *testing.T) {
	store := newTestStore(t)

	created, err := store.CreateMaterial(pricing.Material{
		Name:            "Silver solder",
		UnitCost:        f(24),
		PortionsPerUnit: f(8),
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected assigned id")
	}

	got, err := store.GetMaterial(created.ID)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if got.Name != "Silver solder" || *got.UnitCost != 24 {
		t.Fatalf("unexpected material: %+v", got)
	}

	got.Name = "Hard silver solder"
	if err := store.UpdateMaterial(*got); err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}
	got, err = store.GetMaterial(created.ID)
	if err != nil {
		t.Fatalf("GetMaterial after update: %v", err)
	}
	if got.Name != "Hard silver solder" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := store.UpdateMaterial(pricing.Material{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetMaterial("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessRoundTripKeepsVariants(t *testing.T) {
	store := newTestStore(t)

	hours := 0.75
	created, err := store.CreateProcess(pricing.Process{
		Name:       "Ring sizing",
		LaborHours: &hours,
		SkillLevel: pricing.SkillAdvanced,
		Materials: []pricing.Material{{
			Name:           "Sizing stock",
			MetalDependent: true,
			Variants: []pricing.StullerVariant{
				{MetalType: "Yellow Gold", Karat: "14K", CostPerPortion: f(40)},
			},
		}},
	})
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}

	got, err := store.GetProcess(created.ID)
	if err != nil {
		t.Fatalf("GetProcess: %v", err)
	}
	if len(got.Materials) != 1 || len(got.Materials[0].Variants) != 1 {
		t.Fatalf("nested shapes lost in round trip: %+v", got)
	}
	if got.Materials[0].Variants[0].MetalType != "Yellow Gold" {
		t.Fatalf("unexpected variant: %+v", got.Materials[0].Variants[0])
	}
}

func TestEstimateHistoryOrdersAndFilters(t *testing.T) {
	store := newTestStore(t)

	seedEstimate(t, store, "Ring for Ana", "rush job", 100.50)
	seedEstimate(t, store, "Chain repair", "walk-in", 200.25)
	seedEstimate(t, store, "Ring re-tip", "for Ana again", 300.00)

	all, err := store.ListEstimates("")
	if err != nil {
		t.Fatalf("ListEstimates: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(all))
	}

	byNotes, err := store.ListEstimates("Ana")
	if err != nil {
		t.Fatalf("ListEstimates filter: %v", err)
	}
	if len(byNotes) != 2 {
		t.Fatalf("expected 2 filtered estimates, got %+v", byNotes)
	}

	full, err := store.GetEstimate(all[0].ID)
	if err != nil {
		t.Fatalf("GetEstimate: %v", err)
	}
	if full.Cost.RetailPrice == 0 {
		t.Fatalf("expected breakdown snapshot, got %+v", full)
	}
	if _, err := store.GetEstimate("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func seedEstimate(t *testing.T, store *Store, title, notes string, retail float64) {
	t.Helper()

	cost := pricing.TaskCost{RetailPrice: retail, WholesalePrice: retail / 2, TotalBaseCost: retail / 3}
	if _, err := store.SaveEstimate(title, notes, pricing.Task{Name: title}, cost); err != nil {
		t.Fatalf("SaveEstimate %q: %v", title, err)
	}
}
