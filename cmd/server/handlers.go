package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/finemetal/bench/internal/catalog"
	"github.com/finemetal/bench/internal/export"
	"github.com/finemetal/bench/internal/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

func (s *server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorResponse{Error: msg})
}

func (s *server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondPricingError maps engine validation failures to 400 and everything
// else to 500.
func (s *server) respondPricingError(w http.ResponseWriter, err error) {
	var typeErr *pricing.TypeError
	var rangeErr *pricing.RangeError
	if errors.As(err, &typeErr) || errors.As(err, &rangeErr) {
		s.respondError(w, http.StatusBadRequest, "invalid pricing input: "+err.Error())
		return
	}
	s.log.Error("price calculation", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "calculation failed")
}

// loadSettings resolves the stored settings document into normalized engine
// settings. A missing document is valid; everything defaults.
func (s *server) loadSettings() (pricing.Settings, error) {
	in, err := s.store.Settings()
	if err != nil {
		return pricing.Settings{}, err
	}
	return pricing.NormalizeSettings(in), nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		s.log.Error("validate credentials", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	s.respondJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	in, err := s.store.Settings()
	if err != nil {
		s.log.Error("load settings", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	if in == nil {
		in = &pricing.SettingsInput{}
	}
	s.respondJSON(w, http.StatusOK, in)
}

func (s *server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var in pricing.SettingsInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	if err := s.store.SaveSettings(&in); err != nil {
		s.log.Error("save settings", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	s.respondJSON(w, http.StatusOK, in)
}

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	materials, err := s.store.ListMaterials()
	if err != nil {
		s.log.Error("list materials", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load materials")
		return
	}
	s.respondJSON(w, http.StatusOK, materials)
}

func (s *server) handleMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	var m pricing.Material
	if !s.decodeJSON(w, r, &m) {
		return
	}
	if strings.TrimSpace(m.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.store.CreateMaterial(m)
	if err != nil {
		s.log.Error("create material", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create material")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *server) handleMaterialsGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMaterial(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "material not found")
		return
	}
	if err != nil {
		s.log.Error("get material", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load material")
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *server) handleMaterialsUpdate(w http.ResponseWriter, r *http.Request) {
	var m pricing.Material
	if !s.decodeJSON(w, r, &m) {
		return
	}
	if strings.TrimSpace(m.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	m.ID = chi.URLParam(r, "id")
	err := s.store.UpdateMaterial(m)
	if errors.Is(err, catalog.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "material not found")
		return
	}
	if err != nil {
		s.log.Error("update material", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to update material")
		return
	}
	s.respondJSON(w, http.StatusOK, m)
}

func (s *server) handleProcessesList(w http.ResponseWriter, r *http.Request) {
	processes, err := s.store.ListProcesses()
	if err != nil {
		s.log.Error("list processes", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load processes")
		return
	}
	s.respondJSON(w, http.StatusOK, processes)
}

func (s *server) handleProcessesCreate(w http.ResponseWriter, r *http.Request) {
	var p pricing.Process
	if !s.decodeJSON(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.store.CreateProcess(p)
	if err != nil {
		s.log.Error("create process", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to create process")
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *server) handleProcessesGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProcess(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "process not found")
		return
	}
	if err != nil {
		s.log.Error("get process", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load process")
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *server) handleProcessesUpdate(w http.ResponseWriter, r *http.Request) {
	var p pricing.Process
	if !s.decodeJSON(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	p.ID = chi.URLParam(r, "id")
	err := s.store.UpdateProcess(p)
	if errors.Is(err, catalog.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "process not found")
		return
	}
	if err != nil {
		s.log.Error("update process", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to update process")
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

type priceProcessRequest struct {
	Process   *pricing.Process `json:"process,omitempty"`
	ProcessID string           `json:"processId,omitempty"`
}

func (s *server) handlePriceProcess(w http.ResponseWriter, r *http.Request) {
	var req priceProcessRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	process := req.Process
	if process == nil && req.ProcessID != "" {
		stored, err := s.store.GetProcess(req.ProcessID)
		if errors.Is(err, catalog.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "process not found")
			return
		}
		if err != nil {
			s.log.Error("get process", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to load process")
			return
		}
		process = stored
	}

	settings, err := s.loadSettings()
	if err != nil {
		s.log.Error("load settings", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	cost, err := pricing.CalculateProcessCost(process, settings)
	if err != nil {
		s.respondPricingError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cost)
}

type priceTaskRequest struct {
	Title string       `json:"title,omitempty"`
	Notes string       `json:"notes,omitempty"`
	Task  pricing.Task `json:"task"`
}

type priceTaskResponse struct {
	EstimateID string            `json:"estimateId"`
	Cost       *pricing.TaskCost `json:"cost"`
}

func (s *server) handlePriceTask(w http.ResponseWriter, r *http.Request) {
	var req priceTaskRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	settings, err := s.loadSettings()
	if err != nil {
		s.log.Error("load settings", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	cat, err := s.store.Catalog()
	if err != nil {
		s.log.Error("load catalog", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	cost, err := pricing.CalculateTaskCost(&req.Task, cat, settings)
	if err != nil {
		s.respondPricingError(w, err)
		return
	}

	title := req.Title
	if title == "" {
		title = req.Task.Name
	}
	id, err := s.store.SaveEstimate(title, req.Notes, req.Task, *cost)
	if err != nil {
		s.log.Error("save estimate", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to save estimate")
		return
	}

	s.respondJSON(w, http.StatusOK, priceTaskResponse{EstimateID: id, Cost: cost})
}

func (s *server) handleEstimatesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	estimates, err := s.store.ListEstimates(query)
	if err != nil {
		s.log.Error("list estimates", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load estimates")
		return
	}
	s.respondJSON(w, http.StatusOK, estimates)
}

func (s *server) handleEstimatesGet(w http.ResponseWriter, r *http.Request) {
	estimate, err := s.store.GetEstimate(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "estimate not found")
		return
	}
	if err != nil {
		s.log.Error("get estimate", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load estimate")
		return
	}
	s.respondJSON(w, http.StatusOK, estimate)
}

func (s *server) handleExportPricebook(w http.ResponseWriter, r *http.Request) {
	settings, err := s.loadSettings()
	if err != nil {
		s.log.Error("load settings", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	cat, err := s.store.Catalog()
	if err != nil {
		s.log.Error("load catalog", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	book, err := export.BuildPricebook(cat, settings)
	if err != nil {
		s.log.Error("build price book", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to build price book")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="pricebook.xlsx"`)
	if err := book.Write(w); err != nil {
		s.log.Error("write price book", zap.Error(err))
	}
}
