package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	"spellaudit/internal/config"
	"spellaudit/internal/data"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Verifies the configured audit store and spell-checker dependencies before
// first startup.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := data.InitDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("audit store unreachable (%s): %v", cfg.DBDriver, err)
	}
	defer db.Close()
	fmt.Printf("Audit store OK (%s)\n", cfg.DBDriver)

	if _, err := exec.LookPath(cfg.CheckerBin); err != nil {
		log.Fatalf("checker binary not found: %s", cfg.CheckerBin)
	}
	fmt.Printf("Checker binary OK (%s)\n", cfg.CheckerBin)

	if _, err := os.Stat(cfg.Wordlist); err != nil {
		log.Fatalf("wordlist not found: %s", cfg.Wordlist)
	}
	fmt.Printf("Wordlist OK (%s)\n", cfg.Wordlist)
}
