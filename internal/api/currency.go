package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetCurrencyRates fetches the current exchange rates, keyed by currency
// code (e.g. "EUR"). The endpoint has shipped rates in several envelope
// shapes over time, so parsing is tolerant: a "data" object, a "rates"
// object, or a flat map all work.
func (c *Client) GetCurrencyRates(ctx context.Context) (map[string]float64, error) {
	var raw map[string]json.RawMessage
	if err := c.get(ctx, "/config/currency/list", &raw); err != nil {
		return nil, err
	}

	for _, key := range []string{"data", "rates"} {
		if nested, ok := raw[key]; ok {
			var rates map[string]float64
			if err := json.Unmarshal(nested, &rates); err == nil && len(rates) > 0 {
				return rates, nil
			}
		}
	}

	// Flat map: every value must be numeric.
	rates := make(map[string]float64, len(raw))
	for code, v := range raw {
		var rate float64
		if err := json.Unmarshal(v, &rate); err != nil {
			return nil, fmt.Errorf("unexpected currency response shape at %q", code)
		}
		rates[code] = rate
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("currency response contained no rates")
	}

	return rates, nil
}

// AccountProfile holds the subset of the profile response the bots log.
type AccountProfile struct {
	Data struct {
		Username string  `json:"username"`
		Balance  float64 `json:"balance"`
	} `json:"data"`
}

// GetAccountProfile fetches the authenticated account's profile.
func (c *Client) GetAccountProfile(ctx context.Context) (*AccountProfile, error) {
	var profile AccountProfile
	if err := c.get(ctx, "/account/profile/me", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
