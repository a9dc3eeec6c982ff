package application

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Policy holds billing behavior that is deployment configuration rather
// than domain rule: the reconciler walk bounds, the display currency and
// how many rows a receipt shows. Loaded from BILLING_CONFIG yaml when
// present, env vars otherwise.
type Policy struct {
	UnpaidWalkLimit   int    `yaml:"unpaid_walk_limit"`
	AllocateWalkLimit int    `yaml:"allocate_walk_limit"`
	Currency          string `yaml:"currency"`
	ReceiptRows       int    `yaml:"receipt_rows"`
}

// LoadPolicy loads billing policy from yaml or env.
func LoadPolicy() (Policy, error) {
	policy := Policy{
		UnpaidWalkLimit:   getenvIntDefault("BILLING_UNPAID_WALK_LIMIT", 240),
		AllocateWalkLimit: getenvIntDefault("BILLING_ALLOCATE_WALK_LIMIT", 120),
		Currency:          getenvDefault("BILLING_CURRENCY", "IDR"),
		ReceiptRows:       getenvIntDefault("BILLING_RECEIPT_ROWS", 12),
	}

	if path := os.Getenv("BILLING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return policy, err
		}
		if err := yaml.Unmarshal(data, &policy); err != nil {
			return policy, err
		}
	}

	if policy.UnpaidWalkLimit <= 0 {
		return policy, errors.New("billing: unpaid walk limit must be positive")
	}
	if policy.AllocateWalkLimit <= 0 {
		return policy, errors.New("billing: allocate walk limit must be positive")
	}
	if policy.Currency == "" {
		policy.Currency = "IDR"
	}
	if policy.ReceiptRows <= 0 {
		policy.ReceiptRows = 12
	}
	return policy, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
