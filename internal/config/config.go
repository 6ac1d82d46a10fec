// Package config loads settings from an optional YAML file with
// environment-variable overrides. A local .env file is read first.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type SchedulerConfig struct {
	// Interval between decay sweeps.
	Interval Duration `yaml:"interval"`
}

// Duration lets yaml.v3 decode "2h" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func defaults() *Config {
	return &Config{
		Database:  DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Database: "freshdeal"},
		RabbitMQ:  RabbitMQConfig{Host: "localhost", Port: 5672, User: "guest", Password: "guest", VHost: "/"},
		Scheduler: SchedulerConfig{Interval: Duration(2 * time.Hour)},
	}
}

// Load reads path (ignored when empty or missing), then applies env
// overrides on top of the defaults and file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideInt(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Database, "DB_NAME")

	overrideString(&cfg.RabbitMQ.Host, "RABBITMQ_HOST")
	overrideInt(&cfg.RabbitMQ.Port, "RABBITMQ_PORT")
	overrideString(&cfg.RabbitMQ.User, "RABBITMQ_USER")
	overrideString(&cfg.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	overrideString(&cfg.RabbitMQ.VHost, "RABBITMQ_VHOST")

	if v := os.Getenv("DECAY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse DECAY_INTERVAL: %w", err)
		}
		cfg.Scheduler.Interval = Duration(d)
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
