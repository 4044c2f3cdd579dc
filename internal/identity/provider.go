// Package identity supplies domain.IdentityProvider implementations. The
// chat core treats identity as an external concern; this package holds the
// client for the external service plus a static provider for development.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nfrund/roomcast/internal/domain"
)

// HTTPProvider resolves tokens against an external identity service. It
// expects GET {baseURL}/verify with a bearer token to answer
// {"username": "..."} for valid tokens and a non-200 status otherwise.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider creates a provider for the identity service at baseURL.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Resolve implements domain.IdentityProvider.
func (p *HTTPProvider) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/verify", nil)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("identity service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Anonymous, fmt.Errorf("identity service rejected token: status %d", resp.StatusCode)
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Anonymous, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if body.Username == "" {
		return domain.Anonymous, fmt.Errorf("identity service returned an empty username")
	}

	return domain.Identity{Username: body.Username, Authenticated: true}, nil
}

// StaticProvider resolves tokens from a fixed map. Development and test use
// only.
type StaticProvider struct {
	tokens map[string]string
}

// NewStaticProvider builds a provider from a "token:username,..." spec.
// Malformed entries are skipped.
func NewStaticProvider(spec string) *StaticProvider {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		token, username, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || token == "" || username == "" {
			continue
		}
		tokens[token] = username
	}
	return &StaticProvider{tokens: tokens}
}

// Resolve implements domain.IdentityProvider.
func (p *StaticProvider) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	username, ok := p.tokens[token]
	if !ok {
		return domain.Anonymous, fmt.Errorf("unknown token: %w", domain.ErrNotFound)
	}
	return domain.Identity{Username: username, Authenticated: true}, nil
}
