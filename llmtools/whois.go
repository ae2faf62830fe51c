package llmtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/rs/zerolog/log"
	"github.com/vkoski/infotools/toolkit"
)

// DomainInfo holds the registration data of one domain as parsed from its
// WHOIS record
type DomainInfo struct {
	Domain         string
	Registered     bool
	Registrar      string
	CreatedDate    string
	ExpirationDate string
	Statuses       []string
	NameServers    []string
	QueryTime      time.Time
}

// fetchDomainInfo performs a WHOIS lookup and parses the raw record into a
// DomainInfo. A domain that the registry reports as not found comes back as
// an unregistered DomainInfo, not an error.
func fetchDomainInfo(ctx context.Context, domain string) (DomainInfo, error) {
	log.Debug().Ctx(ctx).Str("domain", domain).Msg("Performing WHOIS lookup")

	raw, err := whois.Whois(domain)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("domain", domain).Msg("Failed to perform WHOIS lookup")
		return DomainInfo{}, fmt.Errorf("WHOIS lookup failed: %w", err)
	}

	info := DomainInfo{Domain: domain, QueryTime: time.Now()}

	parsed, err := whoisparser.Parse(raw)
	if errors.Is(err, whoisparser.ErrNotFoundDomain) {
		return info, nil
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("domain", domain).Msg("Failed to parse WHOIS record")
		return DomainInfo{}, fmt.Errorf("failed to parse WHOIS record: %w", err)
	}

	info.Registered = true
	if parsed.Domain != nil {
		info.CreatedDate = parsed.Domain.CreatedDate
		info.ExpirationDate = parsed.Domain.ExpirationDate
		info.Statuses = parsed.Domain.Status
		info.NameServers = parsed.Domain.NameServers
	}
	if parsed.Registrar != nil {
		info.Registrar = parsed.Registrar.Name
	}

	log.Debug().Ctx(ctx).
		Str("domain", domain).
		Bool("registered", info.Registered).
		Str("registrar", info.Registrar).
		Msg("WHOIS lookup completed")

	return info, nil
}

// formatDomainInfo renders the registration data of one domain as
// human-readable text
func formatDomainInfo(info DomainInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("**WHOIS lookup for %s**\n\n", info.Domain))

	sb.WriteString("Registration:\n")
	if info.Registered {
		sb.WriteString("  Status: registered\n")
	} else {
		sb.WriteString("  Status: not registered\n")
	}
	if info.Registrar != "" {
		sb.WriteString(fmt.Sprintf("  Registrar: %s\n", info.Registrar))
	}
	if info.CreatedDate != "" {
		sb.WriteString(fmt.Sprintf("  Created: %s\n", info.CreatedDate))
	}
	if info.ExpirationDate != "" {
		sb.WriteString(fmt.Sprintf("  Expires: %s\n", info.ExpirationDate))
	}

	if len(info.Statuses) > 0 {
		sb.WriteString("\nDomain status:\n")
		for _, status := range info.Statuses {
			sb.WriteString(fmt.Sprintf("  - %s\n", status))
		}
	}

	if len(info.NameServers) > 0 {
		sb.WriteString("\nNameservers:\n")
		for _, ns := range info.NameServers {
			sb.WriteString(fmt.Sprintf("  - %s\n", ns))
		}
	}

	sb.WriteString(fmt.Sprintf("\nQueried at: %s\n", info.QueryTime.Format(time.RFC3339)))

	return sb.String()
}

// formatDomainAvailability renders a short availability verdict for one domain
func formatDomainAvailability(info DomainInfo) string {
	if !info.Registered {
		return fmt.Sprintf("Domain %s is available: it is currently not registered.", info.Domain)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Domain %s is not available: it is already registered.\n", info.Domain))
	if info.Registrar != "" {
		sb.WriteString(fmt.Sprintf("  Registrar: %s\n", info.Registrar))
	}
	if info.ExpirationDate != "" {
		sb.WriteString(fmt.Sprintf("  Expires: %s\n", info.ExpirationDate))
	}
	return sb.String()
}

// WhoisToolDefinition returns the tool definition for the domain WHOIS tool
var WhoisToolDefinition = toolkit.Definition{
	Type: "function",
	Function: toolkit.FunctionSchema{
		Name:        "query_domain",
		Description: "Look up WHOIS registration information for a domain name. Returns registration status, registrar, creation and expiration dates, domain status codes and nameservers.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"domain": {
					"type": "string",
					"description": "The domain name to look up (e.g., example.com)"
				}
			},
			"required": ["domain"]
		}`),
	},
	Handler:          handleWhoisToolCall,
	ValidityDuration: 1 * time.Hour,
}

func handleWhoisToolCall(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Domain string `json:"domain"`
	}

	log.Debug().Ctx(ctx).Str("arguments", arguments).Msg("Received domain WHOIS tool call")

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("arguments", arguments).Msg("Failed to parse WHOIS tool arguments")
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	if args.Domain == "" {
		return "", fmt.Errorf("domain is required")
	}

	domain := strings.TrimSpace(args.Domain)

	info, err := fetchDomainInfo(ctx, domain)
	if err != nil {
		return "", err
	}

	return formatDomainInfo(info), nil
}

// BatchWhoisToolDefinition returns the tool definition for the batch domain WHOIS tool
var BatchWhoisToolDefinition = toolkit.Definition{
	Type: "function",
	Function: toolkit.FunctionSchema{
		Name:        "batch_query_domains",
		Description: "Look up WHOIS registration information for multiple domain names at once. Accepts a comma-separated list of domains and returns one report per domain.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"domains": {
					"type": "string",
					"description": "Comma-separated list of domain names (e.g., example.com,example.net)"
				}
			},
			"required": ["domains"]
		}`),
	},
	Handler:          handleBatchWhoisToolCall,
	ValidityDuration: 1 * time.Hour,
}

func handleBatchWhoisToolCall(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Domains string `json:"domains"`
	}

	log.Debug().Ctx(ctx).Str("arguments", arguments).Msg("Received batch domain WHOIS tool call")

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("arguments", arguments).Msg("Failed to parse batch WHOIS tool arguments")
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	var domains []string
	for _, domain := range strings.Split(args.Domains, ",") {
		if domain = strings.TrimSpace(domain); domain != "" {
			domains = append(domains, domain)
		}
	}

	if len(domains) == 0 {
		return "", fmt.Errorf("domains is required")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Batch WHOIS lookup (%d domains)**\n\n", len(domains)))

	for i, domain := range domains {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		info, err := fetchDomainInfo(ctx, domain)
		if err != nil {
			sb.WriteString(fmt.Sprintf("**WHOIS lookup for %s**\n\nLookup failed: %s\n", domain, err.Error()))
			continue
		}
		sb.WriteString(formatDomainInfo(info))
	}

	return sb.String(), nil
}

// DomainAvailabilityToolDefinition returns the tool definition for the domain availability tool
var DomainAvailabilityToolDefinition = toolkit.Definition{
	Type: "function",
	Function: toolkit.FunctionSchema{
		Name:        "check_domain_availability",
		Description: "Check whether a domain name is available for registration. Returns a short verdict, with registrar and expiration details when the domain is taken.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"domain": {
					"type": "string",
					"description": "The domain name to check (e.g., example.com)"
				}
			},
			"required": ["domain"]
		}`),
	},
	Handler:          handleDomainAvailabilityToolCall,
	ValidityDuration: 1 * time.Hour,
}

func handleDomainAvailabilityToolCall(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Domain string `json:"domain"`
	}

	log.Debug().Ctx(ctx).Str("arguments", arguments).Msg("Received domain availability tool call")

	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("arguments", arguments).Msg("Failed to parse domain availability tool arguments")
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	if args.Domain == "" {
		return "", fmt.Errorf("domain is required")
	}

	info, err := fetchDomainInfo(ctx, strings.TrimSpace(args.Domain))
	if err != nil {
		return "", err
	}

	return formatDomainAvailability(info), nil
}
