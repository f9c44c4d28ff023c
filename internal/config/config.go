package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"taskboard/internal/util"
)

const minSecretLength = 16

// Config holds runtime settings. Every flag falls back to an environment variable.
type Config struct {
	Addr        string
	DBPath      string
	StaticDir   string
	CORSOrigins []string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load parses args (without the program name) on top of the environment.
func Load(args []string) (Config, error) {
	var (
		cfg     Config
		origins string
		ttl     string
	)

	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", util.EnvOrDefault("TASKBOARD_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", util.EnvOrDefault("TASKBOARD_DB_PATH", "data/taskboard.db"), "Path to sqlite database file")
	fs.StringVar(&cfg.StaticDir, "static", util.EnvOrDefault("TASKBOARD_STATIC_DIR", "web/dist"), "Directory with built frontend")
	fs.StringVar(&origins, "cors-origins", util.EnvOrDefault("TASKBOARD_CORS_ORIGINS", "http://localhost:3000"), "Comma separated list of allowed CORS origins")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", util.EnvOrDefault("TASKBOARD_JWT_SECRET", ""), "Secret used to sign session tokens")
	fs.StringVar(&ttl, "token-ttl", util.EnvOrDefault("TASKBOARD_TOKEN_TTL", "168h"), "Session token lifetime")
	fs.StringVar(&cfg.LogLevel, "log-level", util.EnvOrDefault("TASKBOARD_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", util.EnvOrDefault("TASKBOARD_LOG_FORMAT", "text"), "Log format: text or json")
	fs.StringVar(&cfg.LogFile, "log-file", util.EnvOrDefault("TASKBOARD_LOG_FILE", ""), "Optional rotating log file; stdout when empty")
	fs.StringVar(&cfg.AdminName, "admin-name", util.EnvOrDefault("TASKBOARD_ADMIN_NAME", "Administrator"), "Name of the bootstrap admin")
	fs.StringVar(&cfg.AdminEmail, "admin-email", util.EnvOrDefault("TASKBOARD_ADMIN_EMAIL", ""), "Email of the bootstrap admin; skipped when empty")
	fs.StringVar(&cfg.AdminPassword, "admin-password", util.EnvOrDefault("TASKBOARD_ADMIN_PASSWORD", ""), "Password of the bootstrap admin")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	d, err := time.ParseDuration(ttl)
	if err != nil {
		return Config{}, fmt.Errorf("parse token ttl: %w", err)
	}
	cfg.TokenTTL = d
	cfg.CORSOrigins = util.SplitList(origins)

	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.AdminEmail != "" && c.AdminPassword == "" {
		errs = append(errs, errors.New("admin password is required when admin email is set"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
