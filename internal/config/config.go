package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthJWTSecret    string
	AuthTokenTTL     time.Duration
	AuthCookieSecure bool

	Timezone string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string

	SMSGatewayURL string
	SMSGatewayKey string
	SMSSenderID   string

	MatchSweepWindow time.Duration
	MatchTolerance   time.Duration

	DayStartHour          int
	SummaryRunAt          string
	DayBalanceRunAt       string
	VisitResetRunAt       string
	SummaryResetAllVisits bool

	SchedulerInterval   time.Duration
	SchedulerJobTimeout time.Duration

	AdminUsername string
	AdminPassword string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:          getenv("APP_SERVICE", "stranger-backoffice"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      environment,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret:    strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthTokenTTL:     getenvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		AuthCookieSecure: authCookieSecure,
		Timezone:         getenv("APP_TIMEZONE", "Asia/Kolkata"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "stranger"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		SMSGatewayURL: strings.TrimSpace(getenv("SMS_GATEWAY_URL", "")),
		SMSGatewayKey: strings.TrimSpace(getenv("SMS_GATEWAY_KEY", "")),
		SMSSenderID:   getenv("SMS_SENDER_ID", "STRNGR"),

		MatchSweepWindow: getenvDuration("MATCH_SWEEP_WINDOW", 5*time.Minute),
		MatchTolerance:   getenvDuration("MATCH_TOLERANCE", time.Minute),

		DayStartHour:          getenvInt("SUMMARY_DAY_START_HOUR", 7),
		SummaryRunAt:          getenv("SUMMARY_RUN_AT", "07:15"),
		DayBalanceRunAt:       getenv("DAY_BALANCE_RUN_AT", "07:30"),
		VisitResetRunAt:       getenv("VISIT_RESET_RUN_AT", "07:45"),
		SummaryResetAllVisits: getenvBool("SUMMARY_RESET_ALL_VISITS", false),

		SchedulerInterval:   getenvDuration("SCHEDULER_INTERVAL", time.Minute),
		SchedulerJobTimeout: getenvDuration("SCHEDULER_JOB_TIMEOUT", 10*time.Minute),

		AdminUsername: getenv("BOOTSTRAP_ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
	}
}

// Location resolves the configured business timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
