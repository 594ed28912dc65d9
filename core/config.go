package core

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxValidators = 100
	DefaultBatchLimit    = 100
)

type ValidatorsConfig struct {
	MaxValidators    int  `koanf:"max_validators" mapstructure:"max_validators"`
	RejectDuplicates bool `koanf:"reject_duplicates" mapstructure:"reject_duplicates"`
}

type IssuanceConfig struct {
	// BatchLimit is exclusive: a batch must hold fewer entries than this.
	BatchLimit int `koanf:"batch_limit" mapstructure:"batch_limit"`
}

type SessionConfig struct {
	StrictOrdering bool `koanf:"strict_ordering" mapstructure:"strict_ordering"`
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Validators  ValidatorsConfig `koanf:"validators" mapstructure:"validators"`
	Issuance    IssuanceConfig   `koanf:"issuance" mapstructure:"issuance"`
	Session     SessionConfig    `koanf:"session" mapstructure:"session"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "ledger",
		Validators: ValidatorsConfig{
			MaxValidators: DefaultMaxValidators,
		},
		Issuance: IssuanceConfig{
			BatchLimit: DefaultBatchLimit,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Validators.MaxValidators <= 0 {
		return fmt.Errorf("core: validators.max_validators must be positive")
	}
	if c.Issuance.BatchLimit < 2 {
		return fmt.Errorf("core: issuance.batch_limit must be at least 2")
	}
	return nil
}
