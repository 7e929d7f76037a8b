package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PLANTILLA_"
	envConfig  = envPrefix + "CONFIG"
	envEnvFile = envPrefix + "ENV_FILE"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering defaults, a dotenv file, an optional
// YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if PLANTILLA_CONFIG is set
//  3. env (prefix PLANTILLA_), including values read from the dotenv file
//
// The dotenv file named by PLANTILLA_ENV_FILE must exist; the default .env
// is optional. Variables already set in the environment win over it.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// PLANTILLA_PLAYER_ID_START -> player_id_start; underscores are kept to
	// match the flat koanf tags. The loader's own variables are skipped.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		if s == envConfig || s == envEnvFile {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path, explicit := os.LookupEnv(envEnvFile)
	if !explicit || path == "" {
		path = defaultEnvFile
		explicit = false
	}
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("%w: env file %s: %v", ErrLoadConfig, path, err)
	}
}
