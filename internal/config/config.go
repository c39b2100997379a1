package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Cache      CacheConfig
	Resume     ResumeConfig
	Cloudinary CloudinaryConfig
	Lifecycle  LifecycleConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
}

// DatabaseConfig holds connection pool and migration settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	ConnectTimeout     time.Duration
	MigrationsPath     string
}

// AuthConfig holds token and account settings
type AuthConfig struct {
	JWTSecret     string
	JWTExpiry     time.Duration
	JWTIssuer     string
	CookieName    string
	CookieSecure  bool
	BCryptCost    int
	AdminEmail    string
	AdminPassword string
}

// CacheConfig selects the cache provider for filter side data
type CacheConfig struct {
	Provider string
	RedisURL string
	TTL      time.Duration
}

// ResumeConfig controls resume intake and storage
type ResumeConfig struct {
	Storage           string
	Dir               string
	PathPrefix        string
	MaxBytes          int64
	AllowedExtensions []string
}

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName     string
	APIKey        string
	APISecret     string
	Folder        string
	UploadTimeout time.Duration
	MaxRetries    int
}

// LifecycleConfig controls application status transitions
type LifecycleConfig struct {
	StrictTransitions bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

const defaultJWTSecret = "development-jwt-secret-change-me"

// Load reads configuration from the environment, after loading .env.<GO_ENV> or .env
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Auth:       loadAuthConfig(env),
		Cache:      loadCacheConfig(),
		Resume:     loadResumeConfig(),
		Cloudinary: loadCloudinaryConfig(),
		Lifecycle:  loadLifecycleConfig(),
		Logging:    loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	var defaultMaxOpen, defaultMaxIdle int
	var defaultConnLifetime time.Duration

	switch env {
	case "production":
		defaultMaxOpen = 50
		defaultMaxIdle = 20
		defaultConnLifetime = 15 * time.Minute
	case "staging":
		defaultMaxOpen = 25
		defaultMaxIdle = 10
		defaultConnLifetime = 10 * time.Minute
	default: // development
		defaultMaxOpen = 10
		defaultMaxIdle = 5
		defaultConnLifetime = 5 * time.Minute
	}

	return DatabaseConfig{
		URL:                os.Getenv("DATABASE_URL"),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", defaultMaxOpen),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", defaultMaxIdle),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", defaultConnLifetime),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 30*time.Second),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "./migrations"),
	}
}

func loadAuthConfig(env string) AuthConfig {
	return AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:     getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		JWTIssuer:     getEnv("JWT_ISSUER", "jobportal"),
		CookieName:    getEnv("AUTH_COOKIE_NAME", "jobportal_token"),
		CookieSecure:  getBoolEnv("AUTH_COOKIE_SECURE", env == "production"),
		BCryptCost:    getIntEnv("BCRYPT_COST", 12),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Admin@123"),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider: getEnv("CACHE_PROVIDER", "memory"),
		RedisURL: getEnv("REDIS_URL", ""),
		TTL:      getDurationEnv("CACHE_TTL", 5*time.Minute),
	}
}

func loadResumeConfig() ResumeConfig {
	return ResumeConfig{
		Storage:           getEnv("RESUME_STORAGE", "local"),
		Dir:               getEnv("RESUME_DIR", "./wwwroot/resumes"),
		PathPrefix:        getEnv("RESUME_PATH_PREFIX", "/resumes/"),
		MaxBytes:          getInt64Env("RESUME_MAX_BYTES", 5*1024*1024),
		AllowedExtensions: getListEnv("RESUME_ALLOWED_EXTENSIONS", []string{".pdf", ".docx", ".doc"}),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName:     os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:        os.Getenv("CLOUDINARY_API_KEY"),
		APISecret:     os.Getenv("CLOUDINARY_API_SECRET"),
		Folder:        getEnv("CLOUDINARY_FOLDER", "resumes"),
		UploadTimeout: getDurationEnv("CLOUDINARY_UPLOAD_TIMEOUT", 30*time.Second),
		MaxRetries:    getIntEnv("CLOUDINARY_MAX_RETRIES", 3),
	}
}

func loadLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		StrictTransitions: getBoolEnv("APPLICATION_STRICT_TRANSITIONS", false),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Resume.Validate(); err != nil {
		return fmt.Errorf("resume config: %w", err)
	}

	if c.Resume.Storage == "cloudinary" {
		if err := c.Cloudinary.Validate(); err != nil {
			return fmt.Errorf("cloudinary config: %w", err)
		}
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	if d.SlowQueryThreshold <= 0 {
		return fmt.Errorf("SlowQueryThreshold must be positive")
	}

	return nil
}

func (a *AuthConfig) Validate(env string) error {
	if env == "production" && (a.JWTSecret == "" || a.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set for production")
	}

	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

func (r *ResumeConfig) Validate() error {
	switch r.Storage {
	case "local":
		if r.Dir == "" {
			return fmt.Errorf("RESUME_DIR is required for local storage")
		}
	case "cloudinary":
	default:
		return fmt.Errorf("unsupported resume storage: %s", r.Storage)
	}

	if r.MaxBytes <= 0 {
		return fmt.Errorf("RESUME_MAX_BYTES must be positive")
	}

	if r.PathPrefix == "" || !strings.HasPrefix(r.PathPrefix, "/") {
		return fmt.Errorf("RESUME_PATH_PREFIX must start with /")
	}

	if len(r.AllowedExtensions) == 0 {
		return fmt.Errorf("at least one resume extension must be allowed")
	}

	return nil
}

func (c *CloudinaryConfig) Validate() error {
	if c.CloudName == "" || c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("cloudinary credentials are required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv reads a comma-separated list, lower-cased and trimmed
func getListEnv(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.ToLower(strings.TrimSpace(part)); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
