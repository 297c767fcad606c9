// Package config holds the persisted tile-pyramid configuration (§3 of the
// spec) plus process-level settings sourced from the environment, matching
// the teacher's own env-var bootstrap pattern.
package config

import "os"

// DefaultZoomLevels matches the original implementation's defaults.
var DefaultZoomLevels = []uint8{2, 6, 10, 14, 16}

const (
	DefaultTileExtent = 2048
	DefaultTrimDist   = 200.0
)

// Config is the persisted tile-pyramid configuration.
type Config struct {
	ZoomLevels []uint8
	TileExtent uint32
	TrimDist   float64
}

// Default returns the documented default configuration.
func Default() Config {
	zooms := make([]uint8, len(DefaultZoomLevels))
	copy(zooms, DefaultZoomLevels)
	return Config{
		ZoomLevels: zooms,
		TileExtent: DefaultTileExtent,
		TrimDist:   DefaultTrimDist,
	}
}

// SourceLevel returns the smallest configured zoom >= target, or false if
// no configured zoom covers it.
func (c Config) SourceLevel(target uint8) (uint8, bool) {
	for _, z := range c.ZoomLevels {
		if z >= target {
			return z, true
		}
	}
	return 0, false
}

// MinZoom and MaxZoom bound the configured zoom pyramid.
func (c Config) MinZoom() uint8 { return c.ZoomLevels[0] }
func (c Config) MaxZoom() uint8 { return c.ZoomLevels[len(c.ZoomLevels)-1] }

// StravaEnv holds Strava integration credentials, read once at startup.
type StravaEnv struct {
	ClientID      string
	ClientSecret  string
	WebhookSecret string
}

// StravaFromEnv reads Strava credentials from the process environment.
func StravaFromEnv() StravaEnv {
	return StravaEnv{
		ClientID:      os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret:  os.Getenv("STRAVA_CLIENT_SECRET"),
		WebhookSecret: os.Getenv("STRAVA_WEBHOOK_SECRET"),
	}
}

// UploadToken reads the bearer token required by the /upload endpoint.
func UploadToken() string {
	return os.Getenv("HOTPOT_UPLOAD_TOKEN")
}
