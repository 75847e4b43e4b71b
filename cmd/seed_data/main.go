package main

import (
	"fmt"
	"log"
	"time"

	"spellaudit/internal/config"
	"spellaudit/internal/core"
	"spellaudit/internal/data"
	"spellaudit/internal/service"

	_ "modernc.org/sqlite"
)

// Seeds a demo user with a few audit records for local development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := data.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	userRepo := data.NewUserRepo(db)
	loginRepo := data.NewLoginRepo(db)
	queryRepo := data.NewQueryRepo(db)
	authSvc := service.NewAuthService(userRepo, loginRepo)

	const username = "demo"
	existing, err := userRepo.GetByUsername(username)
	if err != nil {
		log.Fatal(err)
	}
	if existing == nil {
		if err := authSvc.Register(username, "demo-password", "000000"); err != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		fmt.Println("Created user 'demo' (password 'demo-password', token '000000')")
	} else {
		fmt.Println("User 'demo' already exists")
	}

	if _, err := loginRepo.Open(username, time.Now().Add(-time.Hour)); err != nil {
		log.Fatalf("Failed to open login record: %v", err)
	}
	if err := loginRepo.CloseEarliestOpen(username, time.Now().Add(-30*time.Minute)); err != nil {
		log.Fatalf("Failed to close login record: %v", err)
	}

	rec := &core.QueryRecord{
		Username:   username,
		QueryText:  "helllo wrold",
		ResultText: "helllo, wrold",
		CreatedAt:  time.Now(),
	}
	if err := queryRepo.Create(rec); err != nil {
		log.Fatalf("Failed to insert query record: %v", err)
	}
	fmt.Printf("Seeded query record %d\n", rec.ID)

	fmt.Println("Test data created successfully.")
}
