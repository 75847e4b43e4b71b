package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/term"

	"spellaudit/internal/api"
	"spellaudit/internal/config"
	"spellaudit/internal/data"
	"spellaudit/internal/logger"
	"spellaudit/internal/service"

	// Audit store drivers
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "reset-password":
			handleResetPassword(os.Args[2:])
			return
		case "help", "--help", "-h":
			printHelp()
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	startServer()
}

func printHelp() {
	fmt.Println("SpellAudit - Spell-Check Server with Audit Trail")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  spellaudit                           Start the server")
	fmt.Println("  spellaudit reset-password -u <user>  Reset user password (interactive)")
	fmt.Println("  spellaudit help                      Show this help")
}

func handleResetPassword(args []string) {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	username := fs.String("u", "", "Username to reset")
	fs.Parse(args)

	if *username == "" {
		fmt.Println("Usage: spellaudit reset-password -u <username>")
		os.Exit(1)
	}

	// Interactive password input (hidden)
	fmt.Print("New password: ")
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Printf("Failed to read password: %v\n", err)
		os.Exit(1)
	}
	password := string(passBytes)

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Printf("Failed to read password: %v\n", err)
		os.Exit(1)
	}

	if password != string(confirmBytes) {
		fmt.Println("Passwords do not match.")
		os.Exit(1)
	}

	if password == "" {
		fmt.Println("Password cannot be empty.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := data.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		fmt.Printf("Failed to init database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := data.NewUserRepo(db)
	loginRepo := data.NewLoginRepo(db)
	authSvc := service.NewAuthService(userRepo, loginRepo)

	if err := authSvc.ResetPassword(*username, password); err != nil {
		fmt.Printf("Failed to reset password: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Password for user '%s' has been reset successfully.\n", *username)
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\nCheck .env file or SPELLAUDIT_KEY environment variable.\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogDir); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	logger.Log.Info().Msg("Starting SpellAudit...")

	db, err := data.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to init database")
	}
	defer db.Close()

	userRepo := data.NewUserRepo(db)
	loginRepo := data.NewLoginRepo(db)
	queryRepo := data.NewQueryRepo(db)

	authSvc := service.NewAuthService(userRepo, loginRepo)
	historySvc := service.NewHistoryService(loginRepo, queryRepo)
	checker := service.NewSpellChecker(cfg.CheckerBin, cfg.Wordlist, cfg.CheckerTimeout)
	spellSvc := service.NewSpellService(checker, queryRepo)

	// Bootstrap admin: created once, skipped on every later startup.
	// The default password must be rotated on first use.
	if err := authSvc.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminToken); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to ensure bootstrap admin")
	}

	templates, err := api.LoadTemplates()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to parse templates")
	}

	authHandler := api.NewAuthHandler(authSvc, userRepo, cfg.SessionKey, templates)
	webHandler := api.NewWebHandler(spellSvc, historySvc, templates)

	r := chi.NewRouter()
	r.Use(api.LoggingMiddleware)
	r.Use(api.SecurityHeaders)

	// Brute force protection on login
	loginLimiter := api.NewRateLimiter(5, 3) // 5 req/min, burst 3

	// Public routes
	r.Get("/register", authHandler.RegisterPage)
	r.Post("/register", authHandler.DoRegister)
	r.Get("/login", authHandler.LoginPage)
	r.With(loginLimiter.Middleware).Post("/login", authHandler.DoLogin)
	r.Get("/logout", authHandler.Logout)

	// Session-protected pages
	r.Group(func(r chi.Router) {
		r.Use(authHandler.RequireUser)
		webHandler.RegisterRoutes(r)
	})

	r.NotFound(webHandler.NotFound)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.Info().Int("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	<-stop
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server shutdown error")
	}
	logger.Log.Info().Msg("Server stopped")
}
