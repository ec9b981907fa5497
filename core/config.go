package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf is the application-wide configuration, loaded once at import time from
// defaults, an optional `config/.env.<env>` file and the environment.
var Conf *Config

type (
	Config struct {
		AppName         string
		Env             string // DEV (local; default), TEST, QA, PROD
		Debug           bool
		TestMode        bool
		Build           string
		WorkDir         string
		SecretKey       []byte
		FrontendBaseURL string

		DefaultFromName string
		DefaultFromAddr string
		SendgridApiKey  string
		RollbarToken    string

		PasswordResetTimeoutDelta time.Duration

		Server  ServerConfig
		Storage StorageConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	// StorageConfig locates the key-value store directory shared by every
	// process of the same installation.
	StorageConfig struct {
		Dir string
	}
)

func (c Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Khedma")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "k3n!sa-p0q5(wer)enb$+57=dz&uoxh2#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Khedma")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("storageDir", filepath.Join(Getwd(), "data"))

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		AppName:         v.GetString("appName"),
		Env:             env,
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		Build:           v.GetString("build"),
		WorkDir:         Getwd(),
		SecretKey:       []byte(v.GetString("secretKey")),
		FrontendBaseURL: v.GetString("frontendBaseURL"),

		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromEmail"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),

		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetInt("serverPort"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Storage: StorageConfig{
			Dir: v.GetString("storageDir"),
		},
	}
}
