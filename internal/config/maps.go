package config

import "time"

type Maps struct {
	APIKey         string        `env:"MAPS_API_KEY,required"`
	OriginLat      float64       `env:"MAPS_ORIGIN_LAT" envDefault:"46.482526"`
	OriginLng      float64       `env:"MAPS_ORIGIN_LNG" envDefault:"30.723310"`
	RequestTimeout time.Duration `env:"MAPS_REQUEST_TIMEOUT" envDefault:"15s"`
	CacheTTL       time.Duration `env:"MAPS_CACHE_TTL" envDefault:"24h"`
}
