package core

import (
	"fmt"
	"net/url"
	"strings"
)

// CallbackURLBuilder builds the URL the baking service fetches the assertion JSON from
type CallbackURLBuilder struct {
	Origin    string // Issuer origin, e.g. https://badges.example.org
	MountPath string // Path prefix the engine is mounted under
}

// Build returns <scheme>://<host><mount>/assertions/<id>?token=<token>
func (b CallbackURLBuilder) Build(assertionID, token string) (string, error) {
	origin, err := url.Parse(b.Origin)
	if err != nil {
		return "", fmt.Errorf("failed to parse issuer origin: %w", err)
	}
	if origin.Host == "" {
		return "", fmt.Errorf("issuer origin %q has no host", b.Origin)
	}

	scheme := origin.Scheme
	if scheme == "" {
		scheme = "http"
	}

	prefix := ""
	if mount := strings.Trim(b.MountPath, "/"); mount != "" {
		prefix = "/" + mount
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     origin.Host,
		Path:     prefix + "/assertions/" + assertionID,
		RawPath:  prefix + "/assertions/" + url.PathEscape(assertionID),
		RawQuery: url.Values{"token": []string{token}}.Encode(),
	}
	return u.String(), nil
}
