// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package api

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// newTransport creates an HTTP transport authenticated with either a static
// personal API key or a client-credentials flow.
func newTransport(ctx context.Context, config Config) http.RoundTripper {
	var source oauth2.TokenSource
	switch {
	case len(config.APIKey) > 0:
		source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.APIKey, TokenType: "Bearer"})
	case len(config.ClientID) > 0 && len(config.ClientSecret) > 0:
		credentials := clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.AuthEndpoint,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		source = credentials.TokenSource(ctx)
	}

	if source == nil {
		return http.DefaultTransport
	}

	return &oauth2.Transport{
		Source: oauth2.ReuseTokenSource(nil, source),
		Base:   http.DefaultTransport,
	}
}
