package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const envPrefix = "MEDIA_ENGINE_"

// Config holds all runtime settings in their final types.
type Config struct {
	AppName    string
	ListenAddr string

	DataRoot  string
	InputDir  string
	WorkDir   string
	OutputDir string
	TempDir   string

	MaxQueueSize        int
	JobRetention        time.Duration
	MaintenanceInterval time.Duration

	CallbackTimeout     time.Duration
	CallbackMaxAttempts int

	SelfTestOnStartup bool
	RequireRKAccel    bool

	LogfilePath string

	FFmpegCommand  string
	FFprobeCommand string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	dataRoot := getEnv("DATA_ROOT", "/data")

	return &Config{
		AppName:    getEnv("APP_NAME", "media-engine"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),

		DataRoot:  dataRoot,
		InputDir:  getEnv("INPUT_DIR", filepath.Join(dataRoot, "input")),
		WorkDir:   getEnv("WORK_DIR", filepath.Join(dataRoot, "work")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(dataRoot, "output")),
		TempDir:   getEnv("TEMP_DIR", "/tmp/media-engine"),

		MaxQueueSize:        getEnvAsInt("MAX_QUEUE_SIZE", 50),
		JobRetention:        time.Duration(getEnvAsInt("JOB_RETENTION_MINUTES", 120)) * time.Minute,
		MaintenanceInterval: time.Duration(getEnvAsInt("MAINTENANCE_INTERVAL_SECONDS", 60)) * time.Second,

		CallbackTimeout:     time.Duration(getEnvAsInt("CALLBACK_TIMEOUT_SECONDS", 10)) * time.Second,
		CallbackMaxAttempts: getEnvAsInt("CALLBACK_MAX_ATTEMPTS", 3),

		SelfTestOnStartup: getEnvAsBool("SELF_TEST_ON_STARTUP", true),
		RequireRKAccel:    getEnvAsBool("REQUIRE_RK_ACCEL", false),

		LogfilePath: getEnv("LOGFILE_PATH", ""),

		FFmpegCommand:  getEnv("FFMPEG_COMMAND", "ffmpeg"),
		FFprobeCommand: getEnv("FFPROBE_COMMAND", "ffprobe"),
	}
}

// PrepareDirs creates the working directories if they are missing.
func (c *Config) PrepareDirs() error {
	for _, dir := range []string{c.InputDir, c.WorkDir, c.OutputDir, c.TempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Validate normalizes out-of-range values instead of failing startup.
func (c *Config) Validate() {
	if c.MaxQueueSize < 1 {
		c.MaxQueueSize = 50
	}
	if c.CallbackMaxAttempts < 1 {
		c.CallbackMaxAttempts = 3
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = time.Minute
	}
	if c.JobRetention <= 0 {
		c.JobRetention = 2 * time.Hour
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(envPrefix + key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}
