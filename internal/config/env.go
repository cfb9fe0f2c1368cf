package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var envFileNames = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local from dir into the process
// environment. Variables already set in the environment are not overridden.
// It returns the files that were loaded.
func loadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	var errs []error
	for _, name := range envFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded, errors.Join(errs...)
}
