package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/sigmotoa/plantilla/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.PlayerIDStart, convey.ShouldEqual, 0)
			convey.So(cfg.MatchIDStart, convey.ShouldEqual, 0)
			convey.So(cfg.TrackedKey, convey.ShouldEqual, "sigmotoa")
			convey.So(cfg.OpponentKey, convey.ShouldEqual, "oponente")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.JSONLogs(), convey.ShouldBeFalse)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		for name, mutate := range map[string]func(*config.Config){
			"zero workers":      func(c *config.Config) { c.Workers = 0 },
			"negative start":    func(c *config.Config) { c.MatchIDStart = -1 },
			"blank tracked key": func(c *config.Config) { c.TrackedKey = "  " },
			"equal keys":        func(c *config.Config) { c.OpponentKey = c.TrackedKey },
			"bad format":        func(c *config.Config) { c.LogFormat = "xml" },
			"bad timezone":      func(c *config.Config) { c.Timezone = "Mars/Olympus_Mons" },
		} {
			convey.Convey("When it has "+name, func() {
				mutate(cfg)
				err := cfg.Validate()

				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When the timezone is UTC", func() {
			cfg.Timezone = "UTC"
			loc, err := cfg.Location()

			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.UTC)
		})

		convey.Convey("When the timezone is local", func() {
			cfg.Timezone = "local"
			loc, err := cfg.Location()

			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})

		convey.Convey("When the format is JSON in any case", func() {
			cfg.LogFormat = "JSON"

			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.JSONLogs(), convey.ShouldBeTrue)
		})
	})
}
