package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// SourceURLValidator checks the base URL of the comic service and the image
// URLs it hands out before any request is made.
type SourceURLValidator struct {
	// AllowLocal permits localhost and private addresses, for test servers
	// and mirrors on the local network.
	AllowLocal bool
	MaxLength  int
}

func NewSourceURLValidator(allowLocal bool) *SourceURLValidator {
	return &SourceURLValidator{
		AllowLocal: allowLocal,
		MaxLength:  2048,
	}
}

// NormalizeBaseURL validates a service base URL and returns it without a
// trailing slash. A missing scheme defaults to https.
func (v *SourceURLValidator) NormalizeBaseURL(input string) (string, error) {
	u, err := v.parse(input)
	if err != nil {
		return "", err
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("base URL must not have a query or fragment")
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}

// ValidateImageURL checks an image URL taken from a comic record.
func (v *SourceURLValidator) ValidateImageURL(input string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "http") {
		return fmt.Errorf("image URL must use http or https protocol")
	}
	_, err := v.parse(input)
	return err
}

func (v *SourceURLValidator) parse(input string) (*url.URL, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return nil, fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return nil, fmt.Errorf("URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("URL must use http or https protocol")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL must have a valid hostname")
	}
	if u.User != nil {
		return nil, fmt.Errorf("URL must not contain credentials")
	}
	if strings.Contains(u.Path, "..") {
		return nil, fmt.Errorf("directory traversal patterns not allowed in URL path")
	}
	if err := v.validateHost(u.Hostname()); err != nil {
		return nil, err
	}
	return u, nil
}

func (v *SourceURLValidator) validateHost(hostname string) error {
	if v.AllowLocal {
		return nil
	}
	if isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost")
}
