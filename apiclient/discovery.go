package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Endpoints are the authentication endpoints of the remote API.
type Endpoints struct {
	LoginURL   string
	RefreshURL string
}

// DiscoverEndpoints reads the issuer's OpenID configuration. The refresh endpoint is the advertised
// token_endpoint; the login endpoint comes from the non-standard login_endpoint field when present.
func DiscoverEndpoints(ctx context.Context, issuerURL string, httpClient *http.Client) (Endpoints, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to discover endpoints for %s: %w", issuerURL, err)
	}

	var extra struct {
		LoginEndpoint string `json:"login_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		return Endpoints{}, fmt.Errorf("failed to read discovery document: %w", err)
	}

	endpoints := Endpoints{
		LoginURL:   extra.LoginEndpoint,
		RefreshURL: provider.Endpoint().TokenURL,
	}
	if endpoints.RefreshURL == "" {
		return Endpoints{}, fmt.Errorf("discovery document for %s has no token_endpoint", issuerURL)
	}
	return endpoints, nil
}
