// Package config resolves statekit CLI settings from the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvVerbose     = "STATEKIT_VERBOSE"
	EnvInspectAddr = "STATEKIT_INSPECT_ADDR"
)

// Config holds the CLI settings. Flags override these values.
type Config struct {
	Verbose     bool
	InspectAddr string
}

// Load reads envFiles (default ".env") into the process environment, then
// builds a Config from it. Missing env files are ignored; variables
// already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	verbose, err := envBool(EnvVerbose, false)
	if err != nil {
		return nil, err
	}
	return &Config{
		Verbose:     verbose,
		InspectAddr: strings.TrimSpace(os.Getenv(EnvInspectAddr)),
	}, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
