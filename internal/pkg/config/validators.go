// internal/pkg/config/validators.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingRequiredConfig indicates a required configuration value is absent
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Validator checks a loaded configuration for a deployment context
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs validation that applies in every environment
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if _, err := url.Parse(cfg.Storage.BaseURL); err != nil {
		return fmt.Errorf("storage base URL is not a valid URL: %w", err)
	}

	if cfg.Storage.RateLimitRPS <= 0 {
		return fmt.Errorf("storage rate limit must be positive")
	}

	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Asynq.Concurrency <= 0 {
		return fmt.Errorf("asynq concurrency must be positive")
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	// Check for placeholder values left over from templated deploys
	if strings.Contains(cfg.Database.Password, "MISSING_") {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if cfg.Storage.Token == "" {
		return fmt.Errorf("%w: storage token", ErrMissingRequiredConfig)
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if strings.HasPrefix(cfg.Storage.BaseURL, "http://") {
		return fmt.Errorf("storage base URL must use https in production")
	}

	if cfg.App.Debug {
		return fmt.Errorf("debug mode must be disabled in production")
	}

	return nil
}

// ValidateFor runs the basic validator plus any environment-specific ones
func ValidateFor(cfg *Config) error {
	validators := []Validator{&BasicValidator{}}
	if cfg.IsProduction() {
		validators = append(validators, &ProductionValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}

	return nil
}
