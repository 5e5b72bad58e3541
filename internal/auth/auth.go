// Package auth validates inbound bearer tokens against a fixed OIDC issuer.
// The signing keys come from the issuer's JWKS endpoint, located via OIDC
// discovery and refreshed through a caching fetcher.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// ClaimsContextKey is the echo context key under which the verified token is
// stored.
const ClaimsContextKey = "auth.claims"

// Verifier validates bearer tokens issued by one OIDC issuer for one
// audience.
type Verifier struct {
	issuer   string
	audience string
	jwksURL  string
	cache    *jwk.Cache
}

// NewVerifier discovers the issuer's JWKS endpoint and prepares the key
// cache. The issuer and audience are consumed unchanged from configuration.
func NewVerifier(ctx context.Context, issuer, audience string) (*Verifier, error) {
	jwksURL, err := discoverJWKSURL(ctx, issuer)
	if err != nil {
		return nil, err
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("create jwks cache: %w", err)
	}
	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}

	return &Verifier{
		issuer:   issuer,
		audience: audience,
		jwksURL:  jwksURL,
		cache:    cache,
	}, nil
}

// Verify parses and validates a raw bearer token: signature against the JWKS
// set, issuer, audience and expiry.
func (v *Verifier) Verify(ctx context.Context, raw string) (jwt.Token, error) {
	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	return tok, nil
}

// Middleware returns an echo middleware that rejects requests without a valid
// bearer token and stores the verified claims on the context.
func (v *Verifier) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid Authorization header"})
			}

			tok, err := v.Verify(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			c.Set(ClaimsContextKey, tok)
			return next(c)
		}
	}
}

// discoverJWKSURL resolves the issuer's jwks_uri via OIDC discovery.
func discoverJWKSURL(ctx context.Context, issuer string) (string, error) {
	wellKnown := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return "", fmt.Errorf("create discovery request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch OIDC configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch OIDC configuration: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode OIDC configuration: %w", err)
	}
	if doc.JWKSURI == "" {
		return "", fmt.Errorf("OIDC configuration from %s has no jwks_uri", issuer)
	}
	return doc.JWKSURI, nil
}
