// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package api

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	errParsingConfig       = errors.New("error parsing platform configuration from environment variables")
	errMissingClientID     = errors.New("PLATFORM_CLIENT_ID is required when PLATFORM_CLIENT_SECRET is set")
	errMissingClientSecret = errors.New("PLATFORM_CLIENT_SECRET is required when PLATFORM_CLIENT_ID is set")
	errMultipleAuthMethods = errors.New("PLATFORM_API_KEY cannot be used together with PLATFORM_CLIENT_ID and PLATFORM_CLIENT_SECRET")
	errInvalidRetryPolicy  = errors.New("invalid retry policy")
)

// RetryPolicy controls the retries of collection fetches. The wait doubles
// from InitialInterval up to MaximumInterval, a Retry-After header wins.
type RetryPolicy struct {
	MaxAttempts     int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	InitialInterval time.Duration `env:"INITIAL_INTERVAL" envDefault:"1s"`
	MaximumInterval time.Duration `env:"MAXIMUM_INTERVAL" envDefault:"100s"`
}

// Config holds the environment-driven platform settings.
type Config struct {
	Endpoint       string        `env:"PLATFORM_ENDPOINT,required"`
	ProjectID      string        `env:"PLATFORM_PROJECT_ID,required"`
	APIKey         string        `env:"PLATFORM_API_KEY"`
	ClientID       string        `env:"PLATFORM_CLIENT_ID"`
	ClientSecret   string        `env:"PLATFORM_CLIENT_SECRET"`
	AuthEndpoint   string        `env:"PLATFORM_AUTH_ENDPOINT"`
	RequestTimeout time.Duration `env:"PLATFORM_REQUEST_TIMEOUT" envDefault:"5s"`
	RateLimit      float64       `env:"PLATFORM_RATE_LIMIT" envDefault:"10"`
	RateBurst      int           `env:"PLATFORM_RATE_BURST" envDefault:"5"`
	Retry          RetryPolicy   `envPrefix:"PLATFORM_RETRY_"`
}

// LoadConfigFromEnv parses and validates the platform configuration.
func LoadConfigFromEnv() (*Config, error) {
	config, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errParsingConfig, unwrapAggregate(err))
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	endpointURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid PLATFORM_ENDPOINT: %w", err)
	}

	switch {
	case len(c.APIKey) > 0 && (len(c.ClientID) > 0 || len(c.ClientSecret) > 0):
		return errMultipleAuthMethods
	case len(c.ClientID) > 0 && len(c.ClientSecret) == 0:
		return errMissingClientSecret
	case len(c.ClientSecret) > 0 && len(c.ClientID) == 0:
		return errMissingClientID
	}

	if len(c.AuthEndpoint) == 0 {
		endpointURL.Path = "/oauth/token"
		c.AuthEndpoint = endpointURL.String()
	} else if _, err := url.Parse(c.AuthEndpoint); err != nil {
		return fmt.Errorf("invalid PLATFORM_AUTH_ENDPOINT: %w", err)
	}

	if c.Retry.MaxAttempts < 1 || c.Retry.InitialInterval > c.Retry.MaximumInterval {
		return fmt.Errorf("%w: attempts must be positive and initial interval not above the maximum", errInvalidRetryPolicy)
	}

	return nil
}

// unwrapAggregate returns the first error of an env.AggregateError.
func unwrapAggregate(err error) error {
	var parseErr env.AggregateError
	if errors.As(err, &parseErr) && len(parseErr.Errors) > 0 {
		return parseErr.Errors[0]
	}
	return err
}
