package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	OptionGrocyAPIKey      = "grocy_api_key"
	OptionResolvedGrocyURL = "resolved_grocy_url"
)

// Options is the persisted add-on configuration.
type Options struct {
	GrocyAPIKey      string `json:"grocy_api_key"`
	ResolvedGrocyURL string `json:"resolved_grocy_url,omitempty"`
}

func (o Options) HasAPIKey() bool {
	return strings.TrimSpace(o.GrocyAPIKey) != ""
}

// Fingerprint returns a short blake2b digest of a secret, or "none" when empty.
func Fingerprint(secret string) string {
	if secret == "" {
		return "none"
	}
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}
