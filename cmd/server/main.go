package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/finemetal/bench/internal/catalog"
	"github.com/finemetal/bench/internal/config"
	"github.com/finemetal/bench/internal/db"
	"github.com/finemetal/bench/internal/migrations"
	"github.com/finemetal/bench/internal/seed"
)

type server struct {
	auth  *authService
	store *catalog.Store
	db    *sql.DB
	log   *zap.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Fatal("run database migrations", zap.Error(err))
	}

	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		logger.Fatal("run startup seed", zap.Error(err))
	}
	if stats.Inserts > 0 {
		logger.Info("seeded catalog", zap.Int("inserts", stats.Inserts))
	}

	srv := &server{
		auth:  newAuthService(database, cfg.SessionSecret),
		store: catalog.New(database),
		db:    database,
		log:   logger,
	}

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsDev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.requireSession)

		api.Get("/settings", s.handleSettingsGet)
		api.Put("/settings", s.handleSettingsPut)

		api.Get("/materials", s.handleMaterialsList)
		api.Post("/materials", s.handleMaterialsCreate)
		api.Get("/materials/{id}", s.handleMaterialsGet)
		api.Put("/materials/{id}", s.handleMaterialsUpdate)

		api.Get("/processes", s.handleProcessesList)
		api.Post("/processes", s.handleProcessesCreate)
		api.Get("/processes/{id}", s.handleProcessesGet)
		api.Put("/processes/{id}", s.handleProcessesUpdate)

		api.Post("/price/process", s.handlePriceProcess)
		api.Post("/price/task", s.handlePriceTask)

		api.Get("/estimates", s.handleEstimatesList)
		api.Get("/estimates/{id}", s.handleEstimatesGet)

		api.Get("/export/pricebook", s.handleExportPricebook)
	})

	return r
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthenticated(r, s.auth) {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
