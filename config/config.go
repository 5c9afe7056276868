package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Session  SessionConfig
	Quote    QuoteConfig
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	Mode            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSL      bool
	From     string
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type QuoteConfig struct {
	ExpiryWindow  time.Duration
	SweepInterval time.Duration
	TokenSecret   string
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		SMTP:     GetSMTPConfig(),
		Session:  GetSessionConfig(),
		Quote:    GetQuoteConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "5433"), // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:         "localhost",
		Port:         "6380", // 測試 Redis 用 6380 port
		Password:     "",
		DB:           1,
		PoolSize:     5,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}

	return &Config{
		Server: ServerConfig{
			Port:            "0",
			BaseURL:         "http://localhost:3000",
			Mode:            "test",
			ShutdownTimeout: time.Second,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 1025,
			From: `"PROCOMP" <info@procomp.hu>`,
		},
		Session: SessionConfig{
			CookieName: "user_sid",
			TTL:        time.Hour,
		},
		Quote: QuoteConfig{
			ExpiryWindow:  20 * time.Minute,
			SweepInterval: 30 * time.Second,
			TokenSecret:   "test-secret",
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "3000"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:3000"),
		Mode:            getEnv("GIN_MODE", "release"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		AllowedOrigins:  []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "procomp"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	// 排程與 session 共用連線池；0 代表使用 go-redis 預設值
	return RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnv("REDIS_PORT", "6379"),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           db,
		PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 20),
		MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}
}

func GetSMTPConfig() SMTPConfig {
	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		panic(err)
	}

	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", "localhost"),
		Port:     port,
		User:     getEnv("SMTP_USER", ""),
		Password: getEnv("SMTP_PASS", ""),
		SSL:      getEnv("SMTP_SECURE", "false") == "true",
		From:     getEnv("FROM_DEFAULT", `"PROCOMP" <info@procomp.hu>`),
	}
}

func GetSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: getEnv("SESSION_COOKIE", "user_sid"),
		TTL:        getEnvAsDuration("SESSION_TTL", time.Hour),
		Secure:     getEnv("SESSION_SECURE", "false") == "true",
	}
}

func GetQuoteConfig() QuoteConfig {
	return QuoteConfig{
		ExpiryWindow:  getEnvAsDuration("QUOTE_EXPIRY_WINDOW", 20*time.Minute),
		SweepInterval: getEnvAsDuration("QUOTE_SWEEP_INTERVAL", 30*time.Second),
		TokenSecret:   getEnv("QUOTE_TOKEN_SECRET", "change-me"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
