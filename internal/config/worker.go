package config

import "time"

type Worker struct {
	CheckInterval         time.Duration `env:"WORKER_CHECK_INTERVAL" envDefault:"60s"`
	PauseCheckInterval    time.Duration `env:"WORKER_PAUSE_CHECK_INTERVAL" envDefault:"3s"`
	DeleteCooldown        time.Duration `env:"WORKER_DELETE_COOLDOWN" envDefault:"20s"`
	TopicalityPeriod      time.Duration `env:"WORKER_TOPICALITY_PERIOD" envDefault:"60s"`
	TopicalityThreshold   time.Duration `env:"WORKER_TOPICALITY_THRESHOLD" envDefault:"720h"`
	TopicalityRescanDelay time.Duration `env:"WORKER_TOPICALITY_RESCAN_DELAY" envDefault:"60s"`
}
