package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnvFile copies key/value pairs from path into the environment via
// setenv. Keys that getenv already reports, and empty values, are skipped.
func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	vals, err := godotenv.Parse(f)
	if err != nil {
		return err
	}

	for k, v := range vals {
		if v == "" || getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
