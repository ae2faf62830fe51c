package llmtools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const openWeatherBody = `{
	"name": "Helsinki",
	"sys": {"country": "FI"},
	"main": {"temp": -3.2, "feels_like": -8.1, "humidity": 86},
	"wind": {"speed": 4.5},
	"weather": [{"description": "light snow"}]
}`

func newTestWeatherClient(baseURL, apiKey string) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: 2 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func TestFetchWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Helsinki" {
			t.Errorf("unexpected city parameter: %q", r.URL.Query().Get("q"))
		}
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("unexpected API key parameter: %q", r.URL.Query().Get("appid"))
		}
		if r.URL.Query().Get("units") != "metric" {
			t.Errorf("unexpected units parameter: %q", r.URL.Query().Get("units"))
		}
		w.Write([]byte(openWeatherBody))
	}))
	defer server.Close()

	client := newTestWeatherClient(server.URL, "test-key")

	report, err := client.FetchWeather(context.Background(), "Helsinki")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.City != "Helsinki" {
		t.Errorf("unexpected city: %q", report.City)
	}
	if report.Country != "FI" {
		t.Errorf("unexpected country: %q", report.Country)
	}
	if report.Temperature != -3.2 {
		t.Errorf("unexpected temperature: %v", report.Temperature)
	}
	if report.Humidity != 86 {
		t.Errorf("unexpected humidity: %d", report.Humidity)
	}
	if report.Description != "light snow" {
		t.Errorf("unexpected description: %q", report.Description)
	}
}

func TestFetchWeatherMissingAPIKey(t *testing.T) {
	client := newTestWeatherClient("http://localhost:0", "")

	_, err := client.FetchWeather(context.Background(), "Helsinki")
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("expected API key error, got: %v", err)
	}
}

func TestFetchWeatherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	}))
	defer server.Close()

	client := newTestWeatherClient(server.URL, "test-key")

	_, err := client.FetchWeather(context.Background(), "Nowhereville")
	if err == nil {
		t.Fatal("expected error for non-OK status")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status code in error, got: %v", err)
	}
}

func TestFormatWeatherReport(t *testing.T) {
	report := WeatherReport{
		City:        "Helsinki",
		Country:     "FI",
		Temperature: -3.2,
		FeelsLike:   -8.1,
		Humidity:    86,
		WindSpeed:   4.5,
		Description: "light snow",
	}

	output := formatWeatherReport(report)

	for _, want := range []string{
		"Helsinki, FI",
		"-3.2°C",
		"feels like -8.1°C",
		"86%",
		"4.5 m/s",
		"light snow",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestFormatWeatherReportMinimal(t *testing.T) {
	output := formatWeatherReport(WeatherReport{City: "Helsinki"})

	if output == "" {
		t.Fatal("formatWeatherReport should never produce empty output")
	}
	if strings.Contains(output, "Conditions:") {
		t.Error("conditions line should be omitted when absent")
	}
}

func TestWeatherHandlerArguments(t *testing.T) {
	handler := weatherHandler(newTestWeatherClient("http://localhost:0", "test-key"))

	if _, err := handler(context.Background(), `not json`); err == nil {
		t.Error("expected error for malformed arguments")
	}
	if _, err := handler(context.Background(), `{}`); err == nil {
		t.Error("expected error for missing city")
	}
}

func TestWeatherHandlerSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openWeatherBody))
	}))
	defer server.Close()

	handler := weatherHandler(newTestWeatherClient(server.URL, "test-key"))

	response, err := handler(context.Background(), `{"city": "Helsinki"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(response, "Helsinki") {
		t.Errorf("response missing city:\n%s", response)
	}
}
