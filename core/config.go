package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default) | TEST | QA | PROD
		Build    string
		AppName  string

		SecretKey    string // shared with the identity provider
		RollbarToken string

		// PassMark is the threshold a grade total must reach to be marked
		// as a pass. Deployment-specific; never hardcode it downstream.
		PassMark float64

		Server   serverConfig
		Database databaseConfig
	}

	serverConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration

		// RequestTimeout bounds the context handed to request handlers,
		// and with it every store call made on their behalf.
		RequestTimeout time.Duration
	}

	databaseConfig struct {
		// Engine selects the document store backend: memdb | mongodb | postgres
		Engine string

		// mongodb
		MongoURI string
		Name     string

		// postgres
		Host       string
		Port       int
		User       string
		Password   string
		DisableTLS bool
	}
)

func (c databaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c serverConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewConfig loads the app configuration; env vars (prefixed with the current ENV)
// take precedence over an optional config/.env.<env> file in appDir.
func NewConfig(appDir string) *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Reportify")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "+*n2fwitt4kq9unm&%t^0=lw+&9ikyqpgm71slu(23rkr=1)b5")
	conf.SetDefault("passMark", 50.0)

	conf.SetDefault("server.host", "0.0.0.0")
	conf.SetDefault("server.port", 8000)
	conf.SetDefault("server.jwtExpirationDelta", 4*time.Hour)
	conf.SetDefault("server.requestTimeout", 15*time.Second)

	conf.SetDefault("database.engine", "memdb")
	conf.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	conf.SetDefault("database.name", "reportify")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.user", "reportify")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", false)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(appDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := new(Config)
	if err := conf.Unmarshal(c); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	c.Env = env
	return c
}
