package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/msalazar/tanda-service/internal/config"
	"github.com/msalazar/tanda-service/internal/handler"
	"github.com/msalazar/tanda-service/internal/integrations/copomex"
	"github.com/msalazar/tanda-service/internal/integrations/evolution"
	"github.com/msalazar/tanda-service/internal/middleware"
	"github.com/msalazar/tanda-service/internal/models"
	"github.com/msalazar/tanda-service/internal/notify"
	"github.com/msalazar/tanda-service/internal/repository"
	"github.com/msalazar/tanda-service/internal/scheduler"
	"github.com/msalazar/tanda-service/internal/service"
	"github.com/msalazar/tanda-service/internal/utils"
	"github.com/msalazar/tanda-service/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	sender := email.NewSender(cfg, logger)
	dispatcher := notify.NewDispatcher(logger,
		notify.NewMailChannel(sender),
		notify.NewDatabaseChannel(repo),
	)
	svc := service.NewService(repo, dispatcher, logger, cfg)
	receipts, err := utils.NewReceiptStore(cfg.ReceiptDir)
	if err != nil {
		logger.Fatalf("Failed to prepare receipt storage: %v", err)
	}
	lookup := copomex.NewClient(cfg, logger)
	h := handler.NewHandler(svc, receipts, lookup)

	// Start the daily reminder jobs
	messenger := evolution.NewClient(cfg, logger)
	sched := scheduler.New(repo, messenger, logger, cfg)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/postal-codes/{cp}", h.AddressLookup).Methods("GET")
	// Authenticated routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/payments/{id}/receipt", h.UploadReceipt).Methods("POST")
	authRouter.HandleFunc("/notifications", h.Notifications).Methods("GET")
	authRouter.HandleFunc("/tandas/{id}/pot", h.Pot).Methods("GET")
	// Admin routes
	adminRouter := authRouter.PathPrefix("/").Subrouter()
	adminRouter.Use(middleware.RequireRole(models.RoleAdmin))
	adminRouter.HandleFunc("/tandas", h.CreateTanda).Methods("POST")
	adminRouter.HandleFunc("/tandas/{id}/participants", h.AddParticipant).Methods("POST")
	adminRouter.HandleFunc("/tandas/{id}/schedule", h.GenerateSchedule).Methods("POST")
	adminRouter.HandleFunc("/payments/uploaded", h.ListUploaded).Methods("GET")
	adminRouter.HandleFunc("/payments/{id}/validate", h.ValidatePayment).Methods("POST")
	adminRouter.HandleFunc("/payments/{id}/reject", h.RejectPayment).Methods("POST")
	adminRouter.HandleFunc("/participants/{id}/winner", h.MarkWinner).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
