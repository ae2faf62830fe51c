package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service. It is loaded once
// at startup and passed explicitly to the components that need it; nothing
// reads the environment during request handling.
type Config struct {
	ListenAddr        string
	ConsoleOutput     bool
	OpenWeatherAPIKey string
	WeatherBaseURL    string
	GeoPrimaryBaseURL string
	GeoBackupBaseURL  string
	SelfIPURL         string
}

// Load reads configuration from the environment, with a .env file as an
// optional source, and applies defaults for everything optional.
func Load() (Config, error) {
	godotenv.Load()

	cfg := Config{
		ListenAddr:        getenvDefault("INFOTOOLS_LISTEN_ADDR", ":8080"),
		ConsoleOutput:     os.Getenv("INFOTOOLS_CONSOLE_OUTPUT") == "true",
		OpenWeatherAPIKey: os.Getenv("INFOTOOLS_OPENWEATHER_API_KEY"),
		WeatherBaseURL:    getenvDefault("INFOTOOLS_WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		GeoPrimaryBaseURL: getenvDefault("INFOTOOLS_GEO_PRIMARY_BASE_URL", "http://ip-api.com/json"),
		GeoBackupBaseURL:  getenvDefault("INFOTOOLS_GEO_BACKUP_BASE_URL", "https://ipinfo.io"),
		SelfIPURL:         getenvDefault("INFOTOOLS_SELF_IP_URL", "https://api.ipify.org?format=json"),
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
