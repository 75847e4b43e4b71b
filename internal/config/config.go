package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       int
	SessionKey string

	DBDriver string
	DBDSN    string

	CheckerBin     string
	Wordlist       string
	CheckerTimeout time.Duration

	// Bootstrap admin credentials. The default password must be rotated on
	// first use in any real deployment.
	AdminUsername string
	AdminPassword string
	AdminToken    string

	LogDir string
}

func Load() (*Config, error) {
	// Try loading .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	key := os.Getenv("SPELLAUDIT_KEY")
	if len(key) < 32 {
		fmt.Println("SPELLAUDIT_KEY not found or too short. Generating a new secure key...")
		newKey, err := generateRandomKey(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}

		if err := saveKeyToEnv(newKey); err != nil {
			fmt.Printf("Warning: Failed to save generated key to .env: %v\n", err)
		} else {
			fmt.Println("New SPELLAUDIT_KEY saved to .env file.")
		}
		key = newKey
	}

	cfg := &Config{
		Port:           envInt("PORT", 8080),
		SessionKey:     key,
		DBDriver:       envStr("SPELLAUDIT_DB_DRIVER", "sqlite"),
		DBDSN:          envStr("SPELLAUDIT_DB_DSN", "spellaudit.db"),
		CheckerBin:     envStr("CHECKER_BIN", "./spell_check"),
		Wordlist:       envStr("CHECKER_WORDLIST", "wordlist.txt"),
		CheckerTimeout: time.Duration(envInt("CHECKER_TIMEOUT_SECONDS", 10)) * time.Second,
		AdminUsername:  envStr("SPELLAUDIT_ADMIN_USER", "admin"),
		AdminPassword:  envStr("SPELLAUDIT_ADMIN_PASSWORD", "Administrator@1"),
		AdminToken:     envStr("SPELLAUDIT_ADMIN_TOKEN", "12345678901"),
		LogDir:         envStr("SPELLAUDIT_LOG_DIR", "logs"),
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres", "mysql", "sqlserver":
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.DBDriver)
	}

	return cfg, nil
}

func envStr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func generateRandomKey(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func saveKeyToEnv(key string) error {
	filename := ".env"
	content, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return os.WriteFile(filename, []byte(fmt.Sprintf("SPELLAUDIT_KEY=%s\nPORT=8080\n", key)), 0644)
	} else if err != nil {
		return err
	}

	lines := strings.Split(string(content), "\n")
	found := false
	newLines := []string{}
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "SPELLAUDIT_KEY=") {
			newLines = append(newLines, fmt.Sprintf("SPELLAUDIT_KEY=%s", key))
			found = true
		} else if strings.TrimSpace(line) != "" {
			newLines = append(newLines, line)
		}
	}
	if !found {
		newLines = append(newLines, fmt.Sprintf("SPELLAUDIT_KEY=%s", key))
	}

	return os.WriteFile(filename, []byte(strings.Join(newLines, "\n")+"\n"), 0644)
}
