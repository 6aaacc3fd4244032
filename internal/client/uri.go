package client

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	paymentScheme = "ergopay:"
	authScheme    = "ergoauth:"

	// AddressPlaceholder is replaced by the wallet address in dynamic requests
	AddressPlaceholder = "#P2PK_ADDRESS#"
)

// ErrAddressRequired is returned when a request needs the wallet address and none is known
var ErrAddressRequired = errors.New("wallet address required for this request")

func hasSchemePrefix(uri, scheme string) bool {
	return len(uri) >= len(scheme) && strings.EqualFold(uri[:len(scheme)], scheme)
}

// IsPaymentRequest reports whether uri uses the ErgoPay scheme
func IsPaymentRequest(uri string) bool {
	return hasSchemePrefix(strings.TrimSpace(uri), paymentScheme)
}

// IsAuthorizationRequest reports whether uri uses the ErgoAuth scheme
func IsAuthorizationRequest(uri string) bool {
	return hasSchemePrefix(strings.TrimSpace(uri), authScheme)
}

// IsDynamicRequest reports whether the request payload must be fetched from an endpoint
func IsDynamicRequest(uri string) bool {
	uri = strings.TrimSpace(uri)
	for _, scheme := range []string{paymentScheme, authScheme} {
		if hasSchemePrefix(uri, scheme) {
			return strings.HasPrefix(uri[len(scheme):], "//")
		}
	}
	return false
}

// IsDynamicWithAddressRequest reports whether a dynamic request carries the address placeholder
func IsDynamicWithAddressRequest(uri string) bool {
	return IsDynamicRequest(uri) && strings.Contains(uri, AddressPlaceholder)
}

// staticPayload returns the payload embedded after the scheme of a static request
func staticPayload(uri string) string {
	uri = strings.TrimSpace(uri)
	for _, scheme := range []string{paymentScheme, authScheme} {
		if hasSchemePrefix(uri, scheme) {
			return uri[len(scheme):]
		}
	}
	return uri
}

// ResolveURL converts a dynamic request URI to the URL to fetch.
// The address placeholder is substituted with the escaped address. Loopback,
// localhost and IP literal hosts are fetched over http, all others over https.
func ResolveURL(uri, address string) (string, error) {
	uri = strings.TrimSpace(uri)
	if !IsDynamicRequest(uri) {
		return "", fmt.Errorf("not a dynamic request: %q", uri)
	}

	if strings.Contains(uri, AddressPlaceholder) {
		if address == "" {
			return "", ErrAddressRequired
		}
		uri = strings.ReplaceAll(uri, AddressPlaceholder, escapeComponent(address))
	}

	rest := uri[strings.Index(uri, "//"):]
	u, err := url.Parse("https:" + rest)
	if err != nil {
		return "", fmt.Errorf("invalid request URI: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("request URI has no host: %q", uri)
	}
	u.Host = strings.ToLower(u.Host)
	if isPlaintextHost(u.Hostname()) {
		u.Scheme = "http"
	}
	return u.String(), nil
}

// escapeComponent percent-encodes everything except RFC 3986 unreserved characters
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isPlaintextHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	return net.ParseIP(host) != nil
}
