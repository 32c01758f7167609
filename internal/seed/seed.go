// Package seed installs the records a fresh installation needs: the admin
// user, the settings singleton, and a small starter catalog of bench
// materials and processes. Runs are idempotent; existing records are never
// touched.
package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/finemetal/bench/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(database *sql.DB, cfg Config) (Stats, error) {
	tx, err := database.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSettings(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterials(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureProcesses(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, HashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// HashPassword returns the stored form of a password. The auth layer compares
// against the same encoding.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensureSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	// An empty document is a complete configuration: every field resolves to
	// an engine default at calculation time.
	if _, err := tx.Exec(`INSERT INTO settings (id, document) VALUES (1, '{}')`); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range starterMaterials() {
		inserted, err := ensureDocument(tx, "materials", m.ID, m.Name, m)
		if err != nil {
			return err
		}
		if inserted {
			stats.Inserts++
		}
	}
	return nil
}

func ensureProcesses(tx *sql.Tx, stats *Stats) error {
	for _, p := range starterProcesses() {
		inserted, err := ensureDocument(tx, "processes", p.ID, p.Name, p)
		if err != nil {
			return err
		}
		if inserted {
			stats.Inserts++
		}
	}
	return nil
}

func ensureDocument(tx *sql.Tx, table, id, name string, record any) (bool, error) {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE name = ? LIMIT 1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s %q existence: %w", table, name, err)
	}
	if exists {
		return false, nil
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("encode %s %q: %w", table, name, err)
	}
	if _, err := tx.Exec(`INSERT INTO `+table+` (id, name, document) VALUES (?, ?, ?)`, id, name, string(doc)); err != nil {
		return false, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	return true, nil
}

func f(v float64) *float64 { return &v }

func starterMaterials() []pricing.Material {
	return []pricing.Material{
		{
			ID:              uuid.New().String(),
			Name:            "Silver solder (hard)",
			UnitCost:        f(24),
			PortionsPerUnit: f(8),
		},
		{
			ID:             uuid.New().String(),
			Name:           "Sizing stock",
			MetalDependent: true,
			Variants: []pricing.StullerVariant{
				{MetalType: "Yellow Gold", Karat: "14K", CostPerPortion: f(38.5)},
				{MetalType: "White Gold", Karat: "14K", CostPerPortion: f(41)},
				{MetalType: "Sterling Silver", CostPerPortion: f(6.25)},
			},
		},
		{
			ID:            uuid.New().String(),
			Name:          "Polishing compound",
			EstimatedCost: f(1.5),
		},
	}
}

func starterProcesses() []pricing.Process {
	return []pricing.Process{
		{
			ID:         uuid.New().String(),
			Name:       "Ring sizing",
			LaborHours: f(0.75),
			SkillLevel: pricing.SkillAdvanced,
			Materials: []pricing.Material{
				{Name: "Silver solder (hard)", UnitCost: f(24), PortionsPerUnit: f(8)},
				{
					Name:           "Sizing stock",
					MetalDependent: true,
					Variants: []pricing.StullerVariant{
						{MetalType: "Yellow Gold", Karat: "14K", CostPerPortion: f(38.5)},
						{MetalType: "White Gold", Karat: "14K", CostPerPortion: f(41)},
					},
				},
			},
		},
		{
			ID:         uuid.New().String(),
			Name:       "Prong re-tip",
			LaborHours: f(0.5),
			SkillLevel: pricing.SkillExpert,
		},
		{
			ID:         uuid.New().String(),
			Name:       "Polish",
			LaborHours: f(0.25),
			SkillLevel: pricing.SkillBasic,
			Materials:  []pricing.Material{{Name: "Polishing compound", EstimatedCost: f(1.5)}},
		},
	}
}
