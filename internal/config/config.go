package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	Postgres Postgres
	Redis    Redis
	Sheets   Sheets
	Maps     Maps
	Bot      Bot
	Worker   Worker
	Server   Server
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"agro_desk"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

type Bot struct {
	Token   string `env:"BOT_TOKEN,required"`
	AdminID int64  `env:"BOT_ADMIN_ID,required"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("validate.Struct: %w", err)
	}

	return config, nil
}
