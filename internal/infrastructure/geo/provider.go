package geo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"agro_desk/internal/config"
	"agro_desk/internal/domain"
	"agro_desk/pkg/contextx"
	"agro_desk/pkg/errcodes"
	"agro_desk/pkg/httpx"
	"agro_desk/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
)

const (
	geocodeURL     = "https://maps.googleapis.com/maps/api/geocode/json"
	routeMatrixURL = "https://routes.googleapis.com/distanceMatrix/v2:computeRouteMatrix"

	headerFieldMask = "X-Goog-FieldMask"
	routeFieldMask  = "duration,distanceMeters,originIndex,destinationIndex"

	cacheKeyPrefix = "distance:"
)

// Provider резолвит адрес назначения в дорожное расстояние от базы
// отгрузки: геокодер Google + Routes API computeRouteMatrix.
// Посчитанные километры кэшируются в Redis по адресу назначения.
type Provider struct {
	cfg        config.Maps
	httpClient *http.Client
	cache      *redis.Client
}

func NewProvider(cfg config.Maps, cache *redis.Client) *Provider {
	return &Provider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: httpx.NewAPIKeyRoundTripper(
				httpx.NewLoggingRoundTripper(http.DefaultTransport),
				cfg.APIKey,
			),
		},
		cache: cache,
	}
}

// ResolveDistanceKm любая ошибка (промах геокодера, промах маршрута,
// сеть, таймаут) означает "расстояние сейчас неизвестно" — вызывающий
// повторит на следующем цикле.
func (p *Provider) ResolveDistanceKm(ctx context.Context, region, district, city string) (float64, error) {
	if p.cfg.APIKey == "" {
		return 0, domain.NewError(errcodes.DistanceUnavailable, "maps api key is not configured")
	}

	cacheKey := cacheKeyPrefix + region + "|" + district + "|" + city

	if km, ok := p.cachedDistance(ctx, cacheKey); ok {
		return km, nil
	}

	destination, err := p.geocode(ctx, fmt.Sprintf("%s, %s район, %s область, Ukraine", city, district, region))
	if err != nil {
		return 0, err
	}

	km, err := p.routeDistanceKm(ctx, destination)
	if err != nil {
		return 0, err
	}

	p.storeDistance(ctx, cacheKey, km)

	return km, nil
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p *Provider) geocode(ctx context.Context, address string) (latLng, error) {
	query := url.Values{}
	query.Set("address", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return latLng{}, domain.WrapError(err, errcodes.DistanceUnavailable, "build geocode request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return latLng{}, domain.WrapError(err, errcodes.DistanceUnavailable, "geocode request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return latLng{}, domain.NewError(
			errcodes.DistanceUnavailable,
			fmt.Sprintf("geocode status %d", resp.StatusCode),
		)
	}

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location latLng `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return latLng{}, domain.WrapError(err, errcodes.DistanceUnavailable, "decode geocode response")
	}

	if payload.Status != "OK" || len(payload.Results) == 0 {
		return latLng{}, domain.NewError(
			errcodes.DistanceUnavailable,
			fmt.Sprintf("address not geocoded: %s (status %s)", address, payload.Status),
		)
	}

	return payload.Results[0].Geometry.Location, nil
}

type routeWaypoint struct {
	Waypoint struct {
		Location struct {
			LatLng struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"latLng"`
		} `json:"location"`
	} `json:"waypoint"`
}

func newRouteWaypoint(lat, lng float64) routeWaypoint {
	var w routeWaypoint
	w.Waypoint.Location.LatLng.Latitude = lat
	w.Waypoint.Location.LatLng.Longitude = lng

	return w
}

func (p *Provider) routeDistanceKm(ctx context.Context, destination latLng) (float64, error) {
	body := struct {
		Origins      []routeWaypoint `json:"origins"`
		Destinations []routeWaypoint `json:"destinations"`
		TravelMode   string          `json:"travelMode"`
	}{
		Origins:      []routeWaypoint{newRouteWaypoint(p.cfg.OriginLat, p.cfg.OriginLng)},
		Destinations: []routeWaypoint{newRouteWaypoint(destination.Lat, destination.Lng)},
		TravelMode:   "DRIVE",
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.DistanceUnavailable, "marshal route matrix request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, routeMatrixURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, domain.WrapError(err, errcodes.DistanceUnavailable, "build route matrix request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerFieldMask, routeFieldMask)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.DistanceUnavailable, "route matrix request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, domain.NewError(
			errcodes.DistanceUnavailable,
			fmt.Sprintf("route matrix status %d", resp.StatusCode),
		)
	}

	// computeRouteMatrix отвечает массивом элементов матрицы;
	// у нас одна пара origin/destination.
	var entries []struct {
		DistanceMeters int `json:"distanceMeters"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return 0, domain.WrapError(err, errcodes.DistanceUnavailable, "decode route matrix response")
	}

	if len(entries) == 0 || entries[0].DistanceMeters <= 0 {
		return 0, domain.NewError(errcodes.DistanceUnavailable, "route matrix returned no distance")
	}

	return float64(entries[0].DistanceMeters) / 1000.0, nil
}

func (p *Provider) cachedDistance(ctx context.Context, key string) (float64, bool) {
	if p.cache == nil {
		return 0, false
	}

	raw, err := p.cache.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}

	km, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return km, true
}

func (p *Provider) storeDistance(ctx context.Context, key string, km float64) {
	if p.cache == nil {
		return
	}

	err := p.cache.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), p.cfg.CacheTTL).Err()
	if err != nil {
		logger(ctx).Warn(
			"distance cache write failed",
			slog.String("key", key),
			logx.Error(err),
		)
	}
}
