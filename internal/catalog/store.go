// Package catalog persists the pricing catalog: admin settings, material and
// process records, and saved estimates. Records are stored as JSON documents
// with their id and name duplicated into columns for lookup and search, so
// older document shapes stay readable without schema churn.
package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finemetal/bench/internal/pricing"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Store provides catalog access over a SQLite database.
type Store struct {
	db *sql.DB
}

func New(database *sql.DB) *Store {
	return &Store{db: database}
}

// Settings returns the stored admin settings document, or nil when none has
// been saved yet. A nil document is a valid engine input; every field takes
// its default.
func (s *Store) Settings() (*pricing.SettingsInput, error) {
	var doc string
	err := s.db.QueryRow(`SELECT document FROM settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}

	var in pricing.SettingsInput
	if err := json.Unmarshal([]byte(doc), &in); err != nil {
		return nil, fmt.Errorf("decode settings document: %w", err)
	}
	return &in, nil
}

// SaveSettings upserts the admin settings singleton.
func (s *Store) SaveSettings(in *pricing.SettingsInput) error {
	doc, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode settings document: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO settings (id, document, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`, string(doc))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// ListMaterials returns all material records, newest first.
func (s *Store) ListMaterials() ([]pricing.Material, error) {
	return listDocuments[pricing.Material](s.db, "materials")
}

// GetMaterial returns one material record by id.
func (s *Store) GetMaterial(id string) (*pricing.Material, error) {
	return getDocument[pricing.Material](s.db, "materials", id)
}

// CreateMaterial stores a new material record, assigning it an id.
func (s *Store) CreateMaterial(m pricing.Material) (pricing.Material, error) {
	m.ID = uuid.New().String()
	if err := insertDocument(s.db, "materials", m.ID, m.Name, m); err != nil {
		return pricing.Material{}, err
	}
	return m, nil
}

// UpdateMaterial replaces a material record in place.
func (s *Store) UpdateMaterial(m pricing.Material) error {
	return updateDocument(s.db, "materials", m.ID, m.Name, m)
}

// ListProcesses returns all process records, newest first.
func (s *Store) ListProcesses() ([]pricing.Process, error) {
	return listDocuments[pricing.Process](s.db, "processes")
}

// GetProcess returns one process record by id.
func (s *Store) GetProcess(id string) (*pricing.Process, error) {
	return getDocument[pricing.Process](s.db, "processes", id)
}

// CreateProcess stores a new process record, assigning it an id.
func (s *Store) CreateProcess(p pricing.Process) (pricing.Process, error) {
	p.ID = uuid.New().String()
	if err := insertDocument(s.db, "processes", p.ID, p.Name, p); err != nil {
		return pricing.Process{}, err
	}
	return p, nil
}

// UpdateProcess replaces a process record in place.
func (s *Store) UpdateProcess(p pricing.Process) error {
	return updateDocument(s.db, "processes", p.ID, p.Name, p)
}

// Catalog loads the full material and process catalogs for legacy ID
// resolution during task pricing.
func (s *Store) Catalog() (pricing.Catalog, error) {
	processes, err := s.ListProcesses()
	if err != nil {
		return pricing.Catalog{}, err
	}
	materials, err := s.ListMaterials()
	if err != nil {
		return pricing.Catalog{}, err
	}
	return pricing.Catalog{Processes: processes, Materials: materials}, nil
}

// EstimateSummary is one row of the estimate history list.
type EstimateSummary struct {
	ID             string  `json:"id"`
	CreatedAt      string  `json:"createdAt"`
	Title          string  `json:"title"`
	RetailPrice    float64 `json:"retailPrice"`
	WholesalePrice float64 `json:"wholesalePrice"`
}

// Estimate is a saved pricing result: the task as priced and the breakdown
// snapshot. Reading it back never recalculates.
type Estimate struct {
	ID             string           `json:"id"`
	CreatedAt      string           `json:"createdAt"`
	Title          string           `json:"title"`
	Notes          string           `json:"notes,omitempty"`
	RetailPrice    float64          `json:"retailPrice"`
	WholesalePrice float64          `json:"wholesalePrice"`
	Task           pricing.Task     `json:"task"`
	Cost           pricing.TaskCost `json:"cost"`
}

// SaveEstimate persists a priced task and returns the new estimate id.
func (s *Store) SaveEstimate(title, notes string, task pricing.Task, cost pricing.TaskCost) (string, error) {
	taskJSON, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("encode task: %w", err)
	}
	costJSON, err := json.Marshal(cost)
	if err != nil {
		return "", fmt.Errorf("encode breakdown: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`
		INSERT INTO estimates (id, title, notes, retail_price, wholesale_price, task_json, breakdown_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, title, notes, cost.RetailPrice, cost.WholesalePrice, string(taskJSON), string(costJSON))
	if err != nil {
		return "", fmt.Errorf("insert estimate: %w", err)
	}
	return id, nil
}

// ListEstimates returns estimate summaries, newest first, optionally
// filtered by a title/notes substring.
func (s *Store) ListEstimates(query string) ([]EstimateSummary, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, created_at, COALESCE(title, ''), retail_price, wholesale_price
		FROM estimates
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	estimates := make([]EstimateSummary, 0)
	for rows.Next() {
		var e EstimateSummary
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Title, &e.RetailPrice, &e.WholesalePrice); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return estimates, nil
}

// GetEstimate returns one saved estimate with its full snapshot.
func (s *Store) GetEstimate(id string) (*Estimate, error) {
	var (
		e        Estimate
		taskJSON string
		costJSON string
	)
	err := s.db.QueryRow(`
		SELECT id, created_at, COALESCE(title, ''), COALESCE(notes, ''), retail_price, wholesale_price, task_json, breakdown_json
		FROM estimates
		WHERE id = ?
	`, id).Scan(&e.ID, &e.CreatedAt, &e.Title, &e.Notes, &e.RetailPrice, &e.WholesalePrice, &taskJSON, &costJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query estimate: %w", err)
	}

	if err := json.Unmarshal([]byte(taskJSON), &e.Task); err != nil {
		return nil, fmt.Errorf("decode task snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(costJSON), &e.Cost); err != nil {
		return nil, fmt.Errorf("decode breakdown snapshot: %w", err)
	}
	return &e, nil
}

func listDocuments[T any](database *sql.DB, table string) ([]T, error) {
	rows, err := database.Query(`SELECT document FROM ` + table + ` ORDER BY datetime(created_at) DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		var record T
		if err := json.Unmarshal([]byte(doc), &record); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", table, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return records, nil
}

func getDocument[T any](database *sql.DB, table, id string) (*T, error) {
	var doc string
	err := database.QueryRow(`SELECT document FROM `+table+` WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	var record T
	if err := json.Unmarshal([]byte(doc), &record); err != nil {
		return nil, fmt.Errorf("decode %s document: %w", table, err)
	}
	return &record, nil
}

func insertDocument(database *sql.DB, table, id, name string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", table, err)
	}
	if _, err := database.Exec(`INSERT INTO `+table+` (id, name, document) VALUES (?, ?, ?)`, id, name, string(doc)); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func updateDocument(database *sql.DB, table, id, name string, record any) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", table, err)
	}

	result, err := database.Exec(`
		UPDATE `+table+`
		SET name = ?, document = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, name, string(doc), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
