package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Gateway drivers
const (
	GatewayMemory   = "memory"
	GatewayPostgres = "postgres"
	GatewayREST     = "rest"
)

type (
	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string

		Server   ServerConfig
		Gateway  GatewayConfig
		Database DatabaseConfig
		Auth     AuthConfig
		Alerts   AlertsConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	// GatewayConfig selects and configures the backend holding tables, procedures and accounts.
	GatewayConfig struct {
		Driver  string // memory | postgres | rest
		URL     string // rest only
		AnonKey string // rest only
		Timeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	AuthConfig struct {
		TokenExpirationDelta time.Duration
	}

	AlertsConfig struct {
		Schedule   string // cron expression; empty disables the scheduled digest
		Recipients []string
		LookBack   time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// AlertRecipients parses Alerts.Recipients, skipping invalid addresses.
func (c *Config) AlertRecipients() []mail.Address {
	addrs := make([]mail.Address, 0, len(c.Alerts.Recipients))
	for _, r := range c.Alerts.Recipients {
		if addr, err := mail.ParseAddress(strings.TrimSpace(r)); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return addrs
}

// NewConfig loads the configuration from the environment.
// Variables are prefixed by the current ENV (DEV by default), eg: DEV_GATEWAY_DRIVER=postgres
func NewConfig() *Config {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Asistencia")
	v.SetDefault("secretKey", "c0m8-x7(vnq!2h$k=l9@z#m4r&w+e1f^p6t*y3u5b)d8s%g")
	v.SetDefault("frontendBaseURL", "http://localhost:4200")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", "127.0.0.1:8000")
	v.SetDefault("server.debugHost", "127.0.0.1:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("gateway.driver", GatewayMemory)
	v.SetDefault("gateway.url", "")
	v.SetDefault("gateway.anonKey", "")
	v.SetDefault("gateway.timeout", 15*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "asistencia")
	v.SetDefault("database.user", "asistencia")
	v.SetDefault("database.password", "asistencia")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("auth.tokenExpirationDelta", 7*24*time.Hour)

	v.SetDefault("alerts.schedule", "")
	v.SetDefault("alerts.recipients", []string{})
	v.SetDefault("alerts.lookBack", 30*24*time.Hour)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Gateway: GatewayConfig{
			Driver:  strings.ToLower(v.GetString("gateway.driver")),
			URL:     strings.TrimRight(v.GetString("gateway.url"), "/"),
			AnonKey: v.GetString("gateway.anonKey"),
			Timeout: v.GetDuration("gateway.timeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Auth: AuthConfig{
			TokenExpirationDelta: v.GetDuration("auth.tokenExpirationDelta"),
		},
		Alerts: AlertsConfig{
			Schedule:   v.GetString("alerts.schedule"),
			Recipients: v.GetStringSlice("alerts.recipients"),
			LookBack:   v.GetDuration("alerts.lookBack"),
		},
	}
	return conf
}

// NewTestConfig returns a Config suitable for tests: debug, in-memory gateway, no env lookup.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		Debug:            true,
		TestMode:         true,
		AppName:          "Asistencia",
		SecretKey:        "secret",
		defaultFromEmail: "noreply@localhost",
		Server: ServerConfig{
			ShutdownTimeout: time.Second,
		},
		Gateway: GatewayConfig{
			Driver:  GatewayMemory,
			Timeout: time.Second,
		},
		Auth: AuthConfig{
			TokenExpirationDelta: time.Hour,
		},
		Alerts: AlertsConfig{
			LookBack: 30 * 24 * time.Hour,
		},
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("env=%s build=%s debug=%t gateway=%s", c.Env, c.Build, c.Debug, c.Gateway.Driver)
}
