package infra

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local then .env. Variables already present in the
// process environment are never overwritten. Returns the files loaded; a file
// that exists but cannot be parsed is an error.
func LoadDotEnv() ([]string, error) {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		if err := godotenv.Load(loaded...); err != nil {
			return nil, fmt.Errorf("load %v: %w", loaded, err)
		}
	}
	return loaded, nil
}
