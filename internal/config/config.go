package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time resolves the community's IANA timezone
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time‑to‑live in minutes
	RefreshTTLDays  int    // refresh token time‑to‑live in days
	BcryptCost      int    // bcrypt cost for password hashing
	Timezone        string // IANA timezone the community operates in (e.g. "Asia/Manila")
	RollMultiDayEnd bool   // roll an inverted end clock forward on multi-day visits too
	RabbitURL       string // AMQP broker URL; empty disables broker notifications
	SendGridKey     string // SendGrid API key; empty disables email notifications
	EmailFrom       string // sender address for outgoing notification mail
	EmailFromName   string // sender display name for outgoing notification mail
	EmailSandbox    bool   // validate mail against the SendGrid API without delivering
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Notification
// backends are optional: leaving their variables unset selects log-only
// delivery.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),  // environment (dev/test/prod)
		Port:            must("APP_PORT"), // port to bind the HTTP server
		DBUser:          must("DB_USER"),  // database user
		DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:          must("DB_HOST"),  // database host
		DBPort:          must("DB_PORT"),  // database port
		DBName:          must("DB_NAME"),  // database name
		JWTSecret:       must("JWT_SECRET"), // secret used for signing JWTs
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
		BcryptCost:      mustInt("BCRYPT_COST"), // bcrypt cost factor
		Timezone:        envStr("APP_TIMEZONE", "Asia/Manila"),
		RollMultiDayEnd: envBool("VISIT_ROLL_MULTIDAY_END", false),
		RabbitURL:       os.Getenv("RABBITMQ_URL"),
		SendGridKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:       envStr("EMAIL_FROM", "noreply@example.org"),
		EmailFromName:   envStr("EMAIL_FROM_NAME", "Community Office"),
		EmailSandbox:    envBool("EMAIL_SANDBOX", false),
	}
}

// Location resolves the configured timezone.  An unknown zone is fatal at
// startup: every visit window in the system is interpreted in this zone,
// so silently falling back to UTC would shift every gate decision.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Fatalf("invalid APP_TIMEZONE %q: %v", c.Timezone, err)
	}
	return loc
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
