package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"celengan/config"
	"celengan/database"
	"celengan/middleware"
	"celengan/router"
	"celengan/service"
)

// @title Celengan.ku API
// @version 1.0
// @description Personal finance ledger: accounts, transactions, recurring entries, budgets and savings goals
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile   string
	port         string
	showVersion  bool
	runRecurring bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
	flag.BoolVar(&runRecurring, "run-recurring", false, "post due recurring transactions once and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("Celengan.ku v1.0.0")
		return
	}

	// embedded defaults, optionally overridden by a config file and CELENGAN_* env
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("port from command line: %s", port)
	}

	config.PrintConfig()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer database.Close(db)

	ledger := service.NewLedgerService(db, service.LedgerOptions{
		Location:   cfg.App.Location,
		MaxCatchUp: cfg.Cron.MaxCatchUp,
		Reporter:   service.NewEmailService(&cfg.Email),
	})

	if runRecurring {
		if err := sweepOnce(ledger); err != nil {
			database.Close(db)
			log.Fatalf("recurring sweep: %v", err)
		}
		return
	}

	middleware.InitJWT(cfg)
	r := router.SetupRouter(cfg, db, ledger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("==========================================")
		log.Printf("  Celengan.ku started")
		log.Printf("==========================================")
		log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
		log.Printf("  API:      http://localhost%s/api/", cfg.Server.Port)
		log.Printf("==========================================")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("server stopped")
}

// sweepOnce is the crontab entry point; the sweep logs its own summary
func sweepOnce(ledger *service.LedgerService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_, err := ledger.AdvanceDueRecurring(ctx)
	return err
}
