package llmtools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vkoski/infotools/config"
	"github.com/vkoski/infotools/toolkit"
)

// WeatherClient queries the OpenWeather current-weather API. The API key and
// endpoint come from the configuration built at process start.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewWeatherClient creates a WeatherClient from the service configuration
func NewWeatherClient(cfg config.Config) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.WeatherBaseURL,
		apiKey:     cfg.OpenWeatherAPIKey,
	}
}

// WeatherReport holds the current weather for one city
type WeatherReport struct {
	City        string
	Country     string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
	Description string
}

// openWeatherResponse is the response schema of the OpenWeather current
// weather endpoint
type openWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// FetchWeather gets the current weather for a city. The city name must be in
// English; the tool description instructs the host to translate first.
func (c *WeatherClient) FetchWeather(ctx context.Context, city string) (WeatherReport, error) {
	if c.apiKey == "" {
		return WeatherReport{}, fmt.Errorf("missing OpenWeather API key in configuration")
	}

	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", c.apiKey)
	params.Add("units", "metric")
	params.Add("lang", "en")

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	log.Debug().Ctx(ctx).Str("city", city).Msg("Fetching current weather")

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("city", city).Msg("Failed to create weather API request")
		return WeatherReport{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("city", city).Msg("Failed to fetch weather data")
		return WeatherReport{}, fmt.Errorf("failed to fetch weather data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("city", city).Msg("Failed to read weather API response")
		return WeatherReport{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Ctx(ctx).Int("status_code", resp.StatusCode).Str("city", city).Msg("Weather API returned non-OK status")
		return WeatherReport{}, fmt.Errorf("weather API returned status code %d", resp.StatusCode)
	}

	var payload openWeatherResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("city", city).Msg("Failed to parse weather API response")
		return WeatherReport{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	report := WeatherReport{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		report.Description = payload.Weather[0].Description
	}

	log.Debug().Ctx(ctx).Str("city", report.City).Float64("temperature", report.Temperature).Msg("Weather data fetched")

	return report, nil
}

// formatWeatherReport renders the current weather as human-readable text
func formatWeatherReport(report WeatherReport) string {
	var sb strings.Builder

	location := report.City
	if report.Country != "" {
		location = fmt.Sprintf("%s, %s", report.City, report.Country)
	}

	sb.WriteString(fmt.Sprintf("**Current weather in %s**\n\n", location))
	sb.WriteString(fmt.Sprintf("  Temperature: %.1f°C (feels like %.1f°C)\n", report.Temperature, report.FeelsLike))
	sb.WriteString(fmt.Sprintf("  Humidity: %d%%\n", report.Humidity))
	sb.WriteString(fmt.Sprintf("  Wind speed: %.1f m/s\n", report.WindSpeed))
	if report.Description != "" {
		sb.WriteString(fmt.Sprintf("  Conditions: %s\n", report.Description))
	}

	return sb.String()
}

// WeatherToolDefinition returns the tool definition for the weather tool
func WeatherToolDefinition(weather *WeatherClient) toolkit.Definition {
	return toolkit.Definition{
		Type: "function",
		Function: toolkit.FunctionSchema{
			Name:        "query_weather",
			Description: "Get the current weather for a city. The city name must be given in English; translate non-English city names before calling (e.g., '東京' -> 'Tokyo').",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"city": {
						"type": "string",
						"description": "The city name in English (e.g., Helsinki, Tokyo)"
					}
				},
				"required": ["city"]
			}`),
		},
		Handler:          weatherHandler(weather),
		ValidityDuration: 15 * time.Minute,
	}
}

func weatherHandler(weather *WeatherClient) toolkit.Handler {
	return func(ctx context.Context, arguments string) (string, error) {
		var args struct {
			City string `json:"city"`
		}

		log.Debug().Ctx(ctx).Str("arguments", arguments).Msg("Received weather tool call")

		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			log.Error().Ctx(ctx).Err(err).Str("arguments", arguments).Msg("Failed to parse weather tool arguments")
			return "", fmt.Errorf("failed to parse arguments: %w", err)
		}

		if args.City == "" {
			return "", fmt.Errorf("city is required")
		}

		report, err := weather.FetchWeather(ctx, strings.TrimSpace(args.City))
		if err != nil {
			return "", err
		}

		return formatWeatherReport(report), nil
	}
}
