package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Access status sources.
const (
	AccessFromPayments = "payments"
	AccessFromEndpoint = "endpoint"
)

type Config struct {
	Env   string
	Debug bool
	Port  string

	APIBaseURL     string
	APITimeout     time.Duration
	RequestTimeout time.Duration
	LoginURL       string
	CORSOrigin     string

	SessionKey    string
	SessionMaxAge int
	SessionSecure bool

	DatabaseURL string

	TxRefMinLength      int
	CompletionThreshold float64
	AccessSource        string

	RollbarToken string
	Build        string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not load .env: %v", err)
	}
	return fromViper(newViper()), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("env", "dev")
	v.SetDefault("debug", false)
	v.SetDefault("port", "8080")
	v.SetDefault("api_base_url", "http://localhost:5000/api")
	v.SetDefault("api_timeout", 10*time.Second)
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("login_url", "/login")
	v.SetDefault("cors_origin", "*")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 86400*7)
	v.SetDefault("session_secure", false)
	v.SetDefault("database_url", "")
	v.SetDefault("tx_ref_min_length", 8)
	v.SetDefault("completion_threshold", 0.9)
	v.SetDefault("access_source", AccessFromPayments)
	v.SetDefault("rollbar_token", "")
	v.SetDefault("build", "dev")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	conf := &Config{
		Env:                 strings.ToLower(v.GetString("env")),
		Debug:               v.GetBool("debug"),
		Port:                v.GetString("port"),
		APIBaseURL:          strings.TrimRight(v.GetString("api_base_url"), "/"),
		APITimeout:          v.GetDuration("api_timeout"),
		RequestTimeout:      v.GetDuration("request_timeout"),
		LoginURL:            v.GetString("login_url"),
		CORSOrigin:          v.GetString("cors_origin"),
		SessionKey:          v.GetString("session_key"),
		SessionMaxAge:       v.GetInt("session_max_age"),
		SessionSecure:       v.GetBool("session_secure"),
		DatabaseURL:         v.GetString("database_url"),
		TxRefMinLength:      v.GetInt("tx_ref_min_length"),
		CompletionThreshold: v.GetFloat64("completion_threshold"),
		AccessSource:        strings.ToLower(v.GetString("access_source")),
		RollbarToken:        v.GetString("rollbar_token"),
		Build:               v.GetString("build"),
	}

	if conf.SessionKey == "" {
		conf.SessionKey = "super-secret-default-key" // dev only
		log.Println("config: SESSION_KEY is not set, using the development default")
	}
	if conf.TxRefMinLength < 1 {
		conf.TxRefMinLength = 1
	}
	if conf.CompletionThreshold <= 0 || conf.CompletionThreshold > 1 {
		conf.CompletionThreshold = 0.9
	}
	if conf.AccessSource != AccessFromEndpoint {
		conf.AccessSource = AccessFromPayments
	}
	return conf
}

func (c *Config) UseDatabase() bool { return c.DatabaseURL != "" }

func (c *Config) IsProduction() bool { return c.Env == "prod" || c.Env == "production" }
