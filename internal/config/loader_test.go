package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/calcutta/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

var configEnvVars = []string{
	"CALCUTTA_CONFIG",
	"CALCUTTA_ADDR",
	"CALCUTTA_LOG_LEVEL",
	"CALCUTTA_POOL_FILE",
	"CALCUTTA_QUEUE_SIZE",
	"CALCUTTA_WORKER_COUNT",
	"CALCUTTA_DEDUPE_SIZE",
	"CALCUTTA_EVENTS_RATE_LIMIT",
	"CALCUTTA_EVENTS_BURST",
	"CALCUTTA_CORS_ALLOWED_ORIGINS",
}

func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

func clearConfigEnvVars() {
	for _, key := range configEnvVars {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			setEnv("CALCUTTA_ADDR", ":8080")
			setEnv("CALCUTTA_POOL_FILE", "/srv/pools.yaml")
			setEnv("CALCUTTA_QUEUE_SIZE", "500")
			setEnv("CALCUTTA_WORKER_COUNT", "16")
			setEnv("CALCUTTA_DEDUPE_SIZE", "2500")
			setEnv("CALCUTTA_EVENTS_RATE_LIMIT", "12.5")
			setEnv("CALCUTTA_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PoolFile, convey.ShouldEqual, "/srv/pools.yaml")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 2500)
				convey.So(cfg.EventsRateLimit, convey.ShouldEqual, 12.5)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			setEnv("CALCUTTA_CONFIG", writeConfigFile(t, `
addr: ":9090"
pool_file: testdata/pools.yaml
queue_size: 300
worker_count: 4
events_burst: 5
cors_allowed_origins:
  - https://pool.example
  - https://admin.pool.example
`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PoolFile, convey.ShouldEqual, "testdata/pools.yaml")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.EventsBurst, convey.ShouldEqual, 5)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://pool.example", "https://admin.pool.example"})
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.EventsRateLimit, convey.ShouldEqual, 200.0)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			setEnv("CALCUTTA_CONFIG", writeConfigFile(t, "addr: \":9090\"\nworker_count: 24\nqueue_size: 300\n"))
			setEnv("CALCUTTA_ADDR", ":8080")
			setEnv("CALCUTTA_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")       // env
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)     // env
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 300) // file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			setEnv("CALCUTTA_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			setEnv("CALCUTTA_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file empties addr", func() {
			setEnv("CALCUTTA_CONFIG", writeConfigFile(t, `addr: ""`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			setEnv("CALCUTTA_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with negative values", func() {
			setEnv("CALCUTTA_WORKER_COUNT", "-10")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
