package config

import "github.com/kelseyhightower/envconfig"

type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"pub_orders"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// Rabbit configures the optional event relay. An empty host disables it;
// live SSE fan-out works without a broker.
type Rabbit struct {
	Host     string `envconfig:"RABBIT_HOST" default:""`
	Port     int    `envconfig:"RABBIT_PORT" default:"5672"`
	User     string `envconfig:"RABBIT_USER" default:"guest"`
	Password string `envconfig:"RABBIT_PASSWORD" default:"guest"`
	VHost    string `envconfig:"RABBIT_VHOST" default:"/"`
}

func (r Rabbit) Enabled() bool { return r.Host != "" }

type Config struct {
	HTTPPort      int    `envconfig:"HTTP_PORT" default:"3000"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"1234"`
	Database      Database
	Rabbit        Rabbit
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
