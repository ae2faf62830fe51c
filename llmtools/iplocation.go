package llmtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vkoski/infotools/config"
	"github.com/vkoski/infotools/metrics"
	"github.com/vkoski/infotools/toolkit"
)

// LookupErrorKind classifies a failed IP geolocation lookup
type LookupErrorKind string

const (
	ErrorKindAPI     LookupErrorKind = "API_ERROR"
	ErrorKindTimeout LookupErrorKind = "TIMEOUT"
	ErrorKindHTTP    LookupErrorKind = "HTTP_ERROR"
	ErrorKindBackup  LookupErrorKind = "BACKUP_API_ERROR"
	ErrorKindUnknown LookupErrorKind = "UNKNOWN_ERROR"
)

// unknownPlaceholder is what absent textual provider fields are reported as
const unknownPlaceholder = "unknown"

// LocationInfo holds the normalized fields of a successful geolocation lookup
type LocationInfo struct {
	ResolvedAddress string
	Country         string
	CountryCode     string
	Region          string
	RegionCode      string
	City            string
	PostalCode      string
	Latitude        float64
	Longitude       float64
	Timezone        string
	ISP             string
	Organization    string
	ASNumber        string
}

// LookupFailure describes why a geolocation lookup failed
type LookupFailure struct {
	Kind    LookupErrorKind
	Message string
}

// LookupResult is the outcome of one geolocation lookup. Exactly one of Info
// and Failure is set.
type LookupResult struct {
	Address string
	Info    *LocationInfo
	Failure *LookupFailure
}

func successResult(address string, info LocationInfo) LookupResult {
	return LookupResult{Address: address, Info: &info}
}

func failureResult(address string, kind LookupErrorKind, message string) LookupResult {
	return LookupResult{Address: address, Failure: &LookupFailure{Kind: kind, Message: message}}
}

var (
	ipv4Pattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	ipv6Pattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$|^::1$|^::$`)
)

// IsValidIPAddress reports whether the candidate looks like an IPv4 or IPv6
// address. IPv6 is matched in its full 8-group form plus the literal "::1"
// and "::"; abbreviated forms with an embedded "::" are not accepted.
func IsValidIPAddress(candidate string) bool {
	return ipv4Pattern.MatchString(candidate) || ipv6Pattern.MatchString(candidate)
}

// GeoClient performs IP geolocation lookups against a primary provider with
// a backup provider as fallback. The endpoints come from the configuration
// built at process start.
type GeoClient struct {
	httpClient     *http.Client
	primaryBaseURL string
	backupBaseURL  string
	selfIPURL      string
}

// NewGeoClient creates a GeoClient from the service configuration
func NewGeoClient(cfg config.Config) *GeoClient {
	return &GeoClient{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		primaryBaseURL: cfg.GeoPrimaryBaseURL,
		backupBaseURL:  cfg.GeoBackupBaseURL,
		selfIPURL:      cfg.SelfIPURL,
	}
}

// ipAPIResponse is the response schema of the primary provider (ip-api.com)
type ipAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	Region      string  `json:"region"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	Query       string  `json:"query"`
}

// lookupPrimary queries the primary geolocation provider. All failure paths
// are converted into a LookupResult, differentiated by error kind.
func (c *GeoClient) lookupPrimary(ctx context.Context, address string) LookupResult {
	requestURL := fmt.Sprintf("%s/%s?lang=en", c.primaryBaseURL, url.PathEscape(address))

	log.Debug().Ctx(ctx).Str("url", requestURL).Str("address", address).Msg("Querying primary geolocation provider")

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("url", requestURL).Msg("Failed to create primary provider request")
		return failureResult(address, ErrorKindUnknown, fmt.Sprintf("failed to create request: %s", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Warn().Ctx(ctx).Str("address", address).Msg("Primary geolocation lookup timed out")
			metrics.RecordGeoLookup("primary", false)
			return failureResult(address, ErrorKindTimeout, "request timed out, please try again later")
		}
		log.Error().Ctx(ctx).Err(err).Str("address", address).Msg("Primary geolocation lookup failed")
		metrics.RecordGeoLookup("primary", false)
		return failureResult(address, ErrorKindUnknown, fmt.Sprintf("lookup failed: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Ctx(ctx).Int("status_code", resp.StatusCode).Str("address", address).Msg("Primary provider returned non-2xx status")
		metrics.RecordGeoLookup("primary", false)
		return failureResult(address, ErrorKindHTTP, fmt.Sprintf("HTTP error: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("address", address).Msg("Failed to read primary provider response")
		metrics.RecordGeoLookup("primary", false)
		return failureResult(address, ErrorKindUnknown, fmt.Sprintf("failed to read response: %s", err))
	}

	var payload ipAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("address", address).Msg("Failed to parse primary provider response")
		metrics.RecordGeoLookup("primary", false)
		return failureResult(address, ErrorKindUnknown, fmt.Sprintf("failed to parse response: %s", err))
	}

	if payload.Status != "success" {
		message := payload.Message
		if message == "" {
			message = "query failed"
		}
		log.Warn().Ctx(ctx).Str("address", address).Str("message", message).Msg("Primary provider reported failure")
		metrics.RecordGeoLookup("primary", false)
		return failureResult(address, ErrorKindAPI, message)
	}

	metrics.RecordGeoLookup("primary", true)

	return successResult(address, LocationInfo{
		ResolvedAddress: textOrDefault(payload.Query, address),
		Country:         textOrDefault(payload.Country, unknownPlaceholder),
		CountryCode:     payload.CountryCode,
		Region:          textOrDefault(payload.RegionName, unknownPlaceholder),
		RegionCode:      payload.Region,
		City:            textOrDefault(payload.City, unknownPlaceholder),
		PostalCode:      payload.Zip,
		Latitude:        payload.Lat,
		Longitude:       payload.Lon,
		Timezone:        payload.Timezone,
		ISP:             textOrDefault(payload.ISP, unknownPlaceholder),
		Organization:    textOrDefault(payload.Org, unknownPlaceholder),
		ASNumber:        payload.AS,
	})
}

// ipinfoResponse is the response schema of the backup provider (ipinfo.io).
// Coordinates come as a single "lat,lon" field.
type ipinfoResponse struct {
	IP       string `json:"ip"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	City     string `json:"city"`
	Postal   string `json:"postal"`
	Loc      string `json:"loc"`
	Timezone string `json:"timezone"`
	Org      string `json:"org"`
}

// lookupBackup queries the backup geolocation provider. Every failure on
// this path collapses into a single BACKUP_API_ERROR kind.
func (c *GeoClient) lookupBackup(ctx context.Context, address string) LookupResult {
	requestURL := fmt.Sprintf("%s/%s/json", c.backupBaseURL, url.PathEscape(address))

	log.Debug().Ctx(ctx).Str("url", requestURL).Str("address", address).Msg("Querying backup geolocation provider")

	backupFailure := func(err error) LookupResult {
		log.Error().Ctx(ctx).Err(err).Str("address", address).Msg("Backup geolocation lookup failed")
		metrics.RecordGeoLookup("backup", false)
		return failureResult(address, ErrorKindBackup, fmt.Sprintf("backup API query failed: %s", err))
	}

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return backupFailure(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return backupFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backupFailure(fmt.Errorf("HTTP error: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return backupFailure(err)
	}

	var payload ipinfoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return backupFailure(err)
	}

	latitude, longitude := parseLocPair(payload.Loc)

	metrics.RecordGeoLookup("backup", true)

	return successResult(address, LocationInfo{
		ResolvedAddress: textOrDefault(payload.IP, address),
		Country:         textOrDefault(payload.Country, unknownPlaceholder),
		Region:          textOrDefault(payload.Region, unknownPlaceholder),
		City:            textOrDefault(payload.City, unknownPlaceholder),
		PostalCode:      payload.Postal,
		Latitude:        latitude,
		Longitude:       longitude,
		Timezone:        payload.Timezone,
		ISP:             textOrDefault(payload.Org, unknownPlaceholder),
	})
}

// parseLocPair splits a "lat,lon" field into its numeric components.
// Missing or malformed components default to 0.
func parseLocPair(loc string) (float64, float64) {
	parts := strings.Split(loc, ",")
	var latitude, longitude float64
	if len(parts) > 0 {
		latitude, _ = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	}
	if len(parts) > 1 {
		longitude, _ = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	}
	return latitude, longitude
}

func textOrDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// ResolveLocation looks up the location of an IP address, trying the primary
// provider first and falling back to the backup provider on failure. When
// both providers fail, the primary's failure is what gets reported; callers
// depend on seeing the primary's error message.
func (c *GeoClient) ResolveLocation(ctx context.Context, address string) LookupResult {
	result := c.lookupPrimary(ctx, address)
	if result.Failure == nil {
		return result
	}

	log.Debug().Ctx(ctx).
		Str("address", address).
		Str("error_kind", string(result.Failure.Kind)).
		Msg("Primary lookup failed, trying backup provider")

	backup := c.lookupBackup(ctx, address)
	if backup.Failure == nil {
		return backup
	}

	return result
}

// selfIPFailureMessage is returned whenever the public IP discovery call
// fails, without attempting geolocation.
const selfIPFailureMessage = "Unable to determine the current public IP address"

// fetchSelfIP resolves the caller's own public IP address via an external
// discovery service.
func (c *GeoClient) fetchSelfIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.selfIPURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch public IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("public IP service returned status code %d", resp.StatusCode)
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to parse public IP response: %w", err)
	}
	if payload.IP == "" {
		return "", fmt.Errorf("public IP service returned no address")
	}

	return payload.IP, nil
}

// ResolveSelfLocation resolves the caller's own public IP address and looks
// up its location. Always returns a complete formatted string, even on total
// failure.
func (c *GeoClient) ResolveSelfLocation(ctx context.Context) string {
	ip, err := c.fetchSelfIP(ctx)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to resolve own public IP")
		return selfIPFailureMessage
	}

	log.Debug().Ctx(ctx).Str("ip", ip).Msg("Resolved own public IP")

	result := c.ResolveLocation(ctx, ip)
	return "**Current public IP lookup**\n\n" + FormatLookupResult(result)
}

// FormatLookupResult renders a lookup result as human-readable text. It is
// total over both variants; sections without data are omitted entirely.
func FormatLookupResult(result LookupResult) string {
	if result.Failure != nil {
		return fmt.Sprintf("**IP lookup failed**\nAddress: %s\nError: %s", result.Address, result.Failure.Message)
	}

	info := result.Info
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**IP location for %s**\n\n", info.ResolvedAddress))

	sb.WriteString("Location:\n")
	sb.WriteString(fmt.Sprintf("  Country: %s", info.Country))
	if info.CountryCode != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", info.CountryCode))
	}
	sb.WriteString("\n")
	if info.Region != "" {
		sb.WriteString(fmt.Sprintf("  Region: %s", info.Region))
		if info.RegionCode != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", info.RegionCode))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  City: %s\n", info.City))
	if info.PostalCode != "" {
		sb.WriteString(fmt.Sprintf("  Postal code: %s\n", info.PostalCode))
	}

	if info.Latitude != 0 || info.Longitude != 0 {
		sb.WriteString("\nCoordinates:\n")
		sb.WriteString(fmt.Sprintf("  Latitude: %s\n", strconv.FormatFloat(info.Latitude, 'f', -1, 64)))
		sb.WriteString(fmt.Sprintf("  Longitude: %s\n", strconv.FormatFloat(info.Longitude, 'f', -1, 64)))
	}

	sb.WriteString("\nNetwork:\n")
	sb.WriteString(fmt.Sprintf("  ISP: %s\n", info.ISP))
	if info.Organization != "" {
		sb.WriteString(fmt.Sprintf("  Organization: %s\n", info.Organization))
	}
	if info.ASNumber != "" {
		sb.WriteString(fmt.Sprintf("  AS number: %s\n", info.ASNumber))
	}

	if info.Timezone != "" {
		sb.WriteString(fmt.Sprintf("\nTimezone: %s\n", info.Timezone))
	}

	return sb.String()
}

// IPLocationToolDefinition returns the tool definition for the IP location tool
func IPLocationToolDefinition(geo *GeoClient) toolkit.Definition {
	return toolkit.Definition{
		Type: "function",
		Function: toolkit.FunctionSchema{
			Name:        "query_ip_location",
			Description: "Look up the geographic location of an IPv4 or IPv6 address. Returns country, region, city, coordinates, ISP and timezone information.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"ip_address": {
						"type": "string",
						"description": "The IP address to look up (e.g., 8.8.8.8)"
					}
				},
				"required": ["ip_address"]
			}`),
		},
		Handler:          ipLocationHandler(geo),
		ValidityDuration: 1 * time.Hour,
	}
}

func ipLocationHandler(geo *GeoClient) toolkit.Handler {
	return func(ctx context.Context, arguments string) (string, error) {
		var args struct {
			IPAddress string `json:"ip_address"`
		}

		log.Debug().Ctx(ctx).Str("arguments", arguments).Msg("Received IP location tool call")

		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			log.Error().Ctx(ctx).Err(err).Str("arguments", arguments).Msg("Failed to parse IP location tool arguments")
			return "", fmt.Errorf("failed to parse arguments: %w", err)
		}

		if args.IPAddress == "" {
			return "", fmt.Errorf("ip_address is required")
		}

		address := strings.TrimSpace(args.IPAddress)

		if !IsValidIPAddress(address) {
			return fmt.Sprintf("Invalid IP address format: %s\nPlease provide a valid IPv4 or IPv6 address, e.g. 8.8.8.8", address), nil
		}

		result := geo.ResolveLocation(ctx, address)
		return FormatLookupResult(result), nil
	}
}

// MyIPLocationToolDefinition returns the tool definition for the self IP location tool
func MyIPLocationToolDefinition(geo *GeoClient) toolkit.Definition {
	return toolkit.Definition{
		Type: "function",
		Function: toolkit.FunctionSchema{
			Name:        "get_my_ip_location",
			Description: "Look up the current public IP address of this host and its geographic location. Takes no parameters.",
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		Handler: func(ctx context.Context, arguments string) (string, error) {
			log.Debug().Ctx(ctx).Msg("Received own IP location tool call")
			return geo.ResolveSelfLocation(ctx), nil
		},
		ValidityDuration: 1 * time.Hour,
	}
}
