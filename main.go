package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "github.com/gregori0101/infrasites-sub001/internal/api/http"
	"github.com/gregori0101/infrasites-sub001/internal/assignment"
	"github.com/gregori0101/infrasites-sub001/internal/audit"
	"github.com/gregori0101/infrasites-sub001/internal/auth"
	"github.com/gregori0101/infrasites-sub001/internal/checklist/application"
	"github.com/gregori0101/infrasites-sub001/internal/config"
	"github.com/gregori0101/infrasites-sub001/internal/directory"
	"github.com/gregori0101/infrasites-sub001/internal/docgen"
	"github.com/gregori0101/infrasites-sub001/internal/observability/metrics"
	"github.com/gregori0101/infrasites-sub001/internal/photo"
	"github.com/gregori0101/infrasites-sub001/internal/report"
	"github.com/gregori0101/infrasites-sub001/internal/site"
	"github.com/gregori0101/infrasites-sub001/internal/storage"
	"github.com/gregori0101/infrasites-sub001/internal/submission"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db)
	auditRepo := audit.NewRepository(db)

	store, err := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.APIKey)
	if err != nil {
		logger.Fatalf("storage client error: %v", err)
	}
	pipeline, err := photo.NewPipeline(store, logger,
		photo.WithTargetBytes(cfg.Photo.TargetKB<<10))
	if err != nil {
		logger.Fatalf("photo pipeline error: %v", err)
	}

	siteRepo := site.NewRepository(db)
	reportRepo := report.NewRepository(db)
	assignmentRepo := assignment.NewRepository(db)
	assignmentService, err := assignment.NewService(assignmentRepo)
	if err != nil {
		logger.Fatalf("assignment service error: %v", err)
	}

	submitService, err := submission.NewService(
		pipeline,
		docgen.Builder{},
		reportRepo,
		assignmentService,
		logger,
		submission.WithResetDelay(cfg.ResetDelay),
		submission.WithFileNames(docgen.FileNames),
	)
	if err != nil {
		logger.Fatalf("submission service error: %v", err)
	}

	session := application.NewSession()
	checklistHandler := apihttp.NewChecklistHandler(session, pipeline, submitService, assignmentService, auditRepo, logger)
	sitesHandler := apihttp.NewSitesHandler(siteRepo, auditRepo, logger)
	assignmentsHandler := apihttp.NewAssignmentsHandler(assignmentRepo, auditRepo, logger)
	reportsHandler := apihttp.NewReportsHandler(reportRepo, logger)
	dashboardHandler := apihttp.NewDashboardHandler(dashboardReader{
		sites:       siteRepo,
		assignments: assignmentRepo,
		reports:     reportRepo,
	}, logger)
	directoryHandler := directory.NewHandler(directory.NewUserRepository(db), []byte(cfg.JWTSecret), auditRepo, logger)

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/directory/emails"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/checklist", checklistHandler.State)
	mux.HandleFunc("/api/v1/checklist/open", checklistHandler.Open)
	mux.HandleFunc("/api/v1/checklist/field", checklistHandler.SetField)
	mux.HandleFunc("/api/v1/checklist/cabinet", checklistHandler.PatchCabinet)
	mux.HandleFunc("/api/v1/checklist/banks", checklistHandler.Banks)
	mux.HandleFunc("/api/v1/checklist/photo", checklistHandler.Photo)
	mux.HandleFunc("/api/v1/checklist/validate", checklistHandler.Validate)
	mux.HandleFunc("/api/v1/checklist/submit", checklistHandler.Submit)
	mux.HandleFunc("/api/v1/sites", sitesHandler.List)
	mux.HandleFunc("/api/v1/sites/import", sitesHandler.Import)
	mux.Handle("/api/v1/assignments", assignmentsHandler)
	mux.HandleFunc("/api/v1/reports", reportsHandler.List)
	mux.HandleFunc("/api/v1/reports/", reportsHandler.Get)
	mux.Handle("/api/v1/dashboard/summary", dashboardHandler)
	mux.Handle("/api/v1/directory/emails", directoryHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s", cfg.ListenAddr)
	logger.Fatal(server.ListenAndServe())
}

// dashboardReader joins the three repositories behind the dashboard query.
type dashboardReader struct {
	sites       *site.Repository
	assignments *assignment.Repository
	reports     *report.Repository
}

func (d dashboardReader) ListSites(ctx context.Context) ([]site.Site, error) {
	return d.sites.List(ctx)
}

func (d dashboardReader) ListAssignments(ctx context.Context) ([]assignment.Assignment, error) {
	return d.assignments.List(ctx)
}

func (d dashboardReader) ListReportSummaries(ctx context.Context) ([]report.Summary, error) {
	return d.reports.ListSummaries(ctx)
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
