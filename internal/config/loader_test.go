package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/soulpath/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.PersistWorkerCount, convey.ShouldEqual, runtime.NumCPU())
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
				convey.So(cfg.SessionCapacity, convey.ShouldEqual, 50_000)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.MaxScoreSource, convey.ShouldEqual, config.MaxScoreFixed)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SOULPATH_ADDR", ":8080")
			_ = os.Setenv("SOULPATH_PERSIST_QUEUE_SIZE", "500")
			_ = os.Setenv("SOULPATH_PERSIST_WORKER_COUNT", "4")
			_ = os.Setenv("SOULPATH_DEDUPE_SIZE", "2500")
			_ = os.Setenv("SOULPATH_SESSION_CAPACITY", "64")
			_ = os.Setenv("SOULPATH_STORE_DRIVER", "sqlite")
			_ = os.Setenv("SOULPATH_SQLITE_PATH", "/tmp/quiz.db")
			_ = os.Setenv("SOULPATH_MAX_SCORE_SOURCE", "table")
			_ = os.Setenv("SOULPATH_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.PersistWorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 2500)
				convey.So(cfg.SessionCapacity, convey.ShouldEqual, 64)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/quiz.db")
				convey.So(cfg.MaxScoreSource, convey.ShouldEqual, config.MaxScoreTable)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
persist_queue_size: 3000
persist_worker_count: 6
dedupe_size: 6000
session_capacity: 128
log_level: debug
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("SOULPATH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 3000)
				convey.So(cfg.PersistWorkerCount, convey.ShouldEqual, 6)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 6000)
				convey.So(cfg.SessionCapacity, convey.ShouldEqual, 128)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
persist_queue_size: 3000
persist_worker_count: 6
dedupe_size: 6000
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("SOULPATH_CONFIG", tmpFile)
			_ = os.Setenv("SOULPATH_ADDR", ":8080")
			_ = os.Setenv("SOULPATH_PERSIST_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")           // Overridden by env
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 3000)  // From file
				convey.So(cfg.PersistWorkerCount, convey.ShouldEqual, 32)  // Overridden by env
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 6000)        // From file
				convey.So(cfg.SessionCapacity, convey.ShouldEqual, 50_000) // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("SOULPATH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SOULPATH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SOULPATH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When enumerated values use mixed case", func() {
			_ = os.Setenv("SOULPATH_MAX_SCORE_SOURCE", "Table")
			_ = os.Setenv("SOULPATH_STORE_DRIVER", " SQLite ")
			_ = os.Setenv("SOULPATH_LOG_FORMAT", "JSON")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are normalized to the canonical values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxScoreSource, convey.ShouldEqual, config.MaxScoreTable)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with an unknown store driver", func() {
			_ = os.Setenv("SOULPATH_STORE_DRIVER", "mysql")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SOULPATH_PERSIST_QUEUE_SIZE", "invalid")
			_ = os.Setenv("SOULPATH_PERSIST_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderEdgeCases(t *testing.T) {
	convey.Convey("Given config loader edge cases", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with zero values", func() {
			_ = os.Setenv("SOULPATH_PERSIST_QUEUE_SIZE", "0")
			_ = os.Setenv("SOULPATH_PERSIST_WORKER_COUNT", "0")
			_ = os.Setenv("SOULPATH_DEDUPE_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should keep them for the consumers to default", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 0)
				convey.So(cfg.PersistWorkerCount, convey.ShouldEqual, 0)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with special characters in addr", func() {
			_ = os.Setenv("SOULPATH_ADDR", "[::1]:8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should keep the address verbatim", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "[::1]:8080")
			})
		})

		convey.Convey("When loading config with YAML file containing comments", func() {
			yamlContent := `
# This is a comment
addr: ":9090"  # Inline comment
persist_queue_size: 300
# Another comment
store_driver: sqlite
sqlite_path: data/results.db
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("SOULPATH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should parse YAML with comments", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PersistQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "data/results.db")
			})
		})

		convey.Convey("When loading config with YAML file containing empty values", func() {
			yamlContent := `
addr: ""
persist_worker_count: 24
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("SOULPATH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SOULPATH_CONFIG",
		"SOULPATH_ADDR",
		"SOULPATH_PERSIST_QUEUE_SIZE",
		"SOULPATH_PERSIST_WORKER_COUNT",
		"SOULPATH_DEDUPE_SIZE",
		"SOULPATH_SESSION_CAPACITY",
		"SOULPATH_STORE_DRIVER",
		"SOULPATH_SQLITE_PATH",
		"SOULPATH_MAX_SCORE_SOURCE",
		"SOULPATH_LOG_FORMAT",
		"SOULPATH_LOG_LEVEL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soulpath-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
