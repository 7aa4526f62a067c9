package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port             string        `yaml:"port"`
	Env              string        `yaml:"env"`
	CORSAllowOrigin  []string      `yaml:"corsAllowOrigins"`
	DatabaseURL      string        `yaml:"databaseUrl"`
	BlobStoreType    string        `yaml:"blobStore"`
	LocalStoreDir    string        `yaml:"localStoreDir"`
	AWSRegion        string        `yaml:"awsRegion"`
	S3Bucket         string        `yaml:"s3Bucket"`
	S3Prefix         string        `yaml:"s3Prefix"`
	SSEKMSKeyID      string        `yaml:"sseKmsKeyId"`
	JWTAccessSecret  string        `yaml:"jwtAccessSecret"`
	JWTRefreshSecret string        `yaml:"jwtRefreshSecret"`
	AccessTokenTTL   time.Duration `yaml:"accessTokenTtl"`
	RefreshTokenTTL  time.Duration `yaml:"refreshTokenTtl"`
	MaxUploadBytes   int64         `yaml:"maxUploadBytes"`
	ShareSweepEvery  time.Duration `yaml:"shareSweepInterval"`
	PublicBaseURL    string        `yaml:"publicBaseUrl"`
	AllowAdminSignup bool          `yaml:"allowAdminSignup"`
}

// Defaults returns the configuration used when neither a config file nor
// environment variables override a value.
func Defaults() Config {
	return Config{
		Port:            "8080",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		BlobStoreType:   "local",
		LocalStoreDir:   "./data",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		MaxUploadBytes:  25 << 20,
		ShareSweepEvery: 10 * time.Minute,
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then
// environment variables, which take precedence. Local .env files fill in
// variables that are not already set.
func Load() Config {
	fsys := afero.NewOsFs()
	loadEnvFiles(fsys, ".env", "cmd/.env")

	base := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		fileCfg, err := loadFile(fsys, path, base)
		if err != nil {
			telemetry.Warn("config.file_ignored", map[string]any{"path": path, "error": err})
		} else {
			base = fileCfg
		}
	}
	return FromEnv(base)
}

// LoadFile overlays the YAML document at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	return loadFile(afero.NewOsFs(), path, base)
}

func loadFile(fsys afero.Fs, path string, base Config) (Config, error) {
	raw, err := afero.ReadFile(fsys, path)
	if err != nil {
		return base, fmt.Errorf("read config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// FromEnv overlays environment variables onto base. Malformed values keep the
// base value and are logged.
func FromEnv(base Config) Config {
	env := &envReader{lookup: os.LookupEnv}

	cfg := Config{
		Port:             env.str("PORT", base.Port),
		Env:              normalizeEnv(env.str("ENV", base.Env)),
		CORSAllowOrigin:  env.list("CORS_ALLOW_ORIGINS", base.CORSAllowOrigin),
		DatabaseURL:      env.str("DATABASE_URL", base.DatabaseURL),
		BlobStoreType:    normalizeStoreType(env.str("BLOB_STORE", base.BlobStoreType)),
		LocalStoreDir:    env.str("LOCAL_STORE_DIR", base.LocalStoreDir),
		AWSRegion:        env.str("AWS_REGION", base.AWSRegion),
		S3Bucket:         env.str("S3_BUCKET", base.S3Bucket),
		S3Prefix:         env.str("S3_PREFIX", base.S3Prefix),
		SSEKMSKeyID:      env.str("SSE_KMS_KEY_ID", base.SSEKMSKeyID),
		JWTAccessSecret:  env.str("JWT_ACCESS_SECRET", base.JWTAccessSecret),
		JWTRefreshSecret: env.str("JWT_REFRESH_SECRET", base.JWTRefreshSecret),
		AccessTokenTTL:   env.seconds("JWT_ACCESS_EXPIRES_SEC", base.AccessTokenTTL),
		RefreshTokenTTL:  env.seconds("JWT_REFRESH_EXPIRES_SEC", base.RefreshTokenTTL),
		MaxUploadBytes:   env.positiveInt("MAX_UPLOAD_BYTES", base.MaxUploadBytes),
		ShareSweepEvery:  env.duration("SHARE_SWEEP_INTERVAL", base.ShareSweepEvery),
		PublicBaseURL:    strings.TrimRight(env.str("PUBLIC_BASE_URL", base.PublicBaseURL), "/"),
		AllowAdminSignup: env.boolean("ALLOW_ADMIN_SIGNUP", base.AllowAdminSignup),
	}

	// JWT_SECRET backs whichever signing secret was left unset.
	if shared := env.str("JWT_SECRET", ""); shared != "" {
		if cfg.JWTAccessSecret == "" {
			cfg.JWTAccessSecret = shared
		}
		if cfg.JWTRefreshSecret == "" {
			cfg.JWTRefreshSecret = shared
		}
	}
	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": cfg.Env})
	}
	for _, key := range env.invalid {
		telemetry.Warn("config.invalid_env", map[string]any{"key": key})
	}
	return cfg
}

// IsProduction reports whether the configuration targets production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// envReader reads typed values and remembers which keys failed to parse.
type envReader struct {
	lookup  func(string) (string, bool)
	invalid []string
}

func (e *envReader) raw(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *envReader) list(key string, def []string) []string {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (e *envReader) positiveInt(key string, def int64) int64 {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		e.invalid = append(e.invalid, key)
		return def
	}
	return n
}

func (e *envReader) seconds(key string, def time.Duration) time.Duration {
	return time.Duration(e.positiveInt(key, int64(def/time.Second))) * time.Second
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.invalid = append(e.invalid, key)
		return def
	}
	return d
}

func (e *envReader) boolean(key string, def bool) bool {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid = append(e.invalid, key)
		return def
	}
	return b
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging", "local", "test":
		return strings.ToLower(strings.TrimSpace(raw))
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "postgres", "pg", "db":
		return "postgres"
	default:
		return "local"
	}
}
