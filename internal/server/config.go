package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment. The JWT secret has no default on
// purpose: a process without one must refuse to start rather than fall back
// to a guessable value.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":3001"`
	MongoURI string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/edumanage"`
	MongoDB  string `env:"MONGO_DB" envDefault:"edumanage"`

	UsersCollection    string `env:"USERS_COLLECTION" envDefault:"users"`
	StudentsCollection string `env:"STUDENTS_COLLECTION" envDefault:"students"`
	CoursesCollection  string `env:"COURSES_COLLECTION" envDefault:"courses"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"edumanage-backend"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Optional bootstrap admin, created at startup when the account does not
	// exist yet. Lets a fresh deployment log in without a seed run.
	AdminName     string `env:"ADMIN_NAME" envDefault:"Admin User"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3001"
	}
	if c.UsersCollection == "" {
		c.UsersCollection = "users"
	}
	if c.StudentsCollection == "" {
		c.StudentsCollection = "students"
	}
	if c.CoursesCollection == "" {
		c.CoursesCollection = "courses"
	}
	if c.JWTIssuer == "" {
		c.JWTIssuer = "edumanage-backend"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.MongoURI == "" {
		return errors.New("config: MONGODB_URI is required")
	}
	if c.MongoDB == "" {
		return errors.New("config: MONGO_DB is required")
	}
	return nil
}
