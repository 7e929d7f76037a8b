package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sigmotoa/plantilla/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.TrackedKey, convey.ShouldEqual, "sigmotoa")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PLANTILLA_WORKERS", "3")
			_ = os.Setenv("PLANTILLA_PLAYER_ID_START", "100")
			_ = os.Setenv("PLANTILLA_LOG_FORMAT", "json")
			_ = os.Setenv("PLANTILLA_TIMEZONE", "UTC")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.PlayerIDStart, convey.ShouldEqual, 100)
				convey.So(cfg.MatchIDStart, convey.ShouldEqual, 0)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
workers: 8
match_id_start: 40
tracked_key: local
opponent_key: visitante
`)
			_ = os.Setenv("PLANTILLA_CONFIG", tmpFile)
			_ = os.Setenv("PLANTILLA_WORKERS", "2")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Workers, convey.ShouldEqual, 2)
				convey.So(cfg.MatchIDStart, convey.ShouldEqual, 40)
				convey.So(cfg.TrackedKey, convey.ShouldEqual, "local")
				convey.So(cfg.OpponentKey, convey.ShouldEqual, "visitante")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("PLANTILLA_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PLANTILLA_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PLANTILLA_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the loaded values fail validation", func() {
			_ = os.Setenv("PLANTILLA_WORKERS", "0")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When a dotenv file is named", func() {
			path := filepath.Join(t.TempDir(), "plantilla.env")
			convey.So(os.WriteFile(path, []byte("PLANTILLA_WORKERS=5\nPLANTILLA_OPPONENT_KEY=rival\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PLANTILLA_ENV_FILE", path)
			_ = os.Setenv("PLANTILLA_WORKERS", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values apply below the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OpponentKey, convey.ShouldEqual, "rival")
				convey.So(cfg.Workers, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the named dotenv file is missing", func() {
			_ = os.Setenv("PLANTILLA_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"PLANTILLA_CONFIG",
		"PLANTILLA_ENV_FILE",
		"PLANTILLA_LOG_LEVEL",
		"PLANTILLA_LOG_FORMAT",
		"PLANTILLA_WORKERS",
		"PLANTILLA_PLAYER_ID_START",
		"PLANTILLA_MATCH_ID_START",
		"PLANTILLA_TRACKED_KEY",
		"PLANTILLA_OPPONENT_KEY",
		"PLANTILLA_TIMEZONE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plantilla-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
