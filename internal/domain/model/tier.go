package model

import (
	"encoding/json"
	"strings"
)

// Tier is the Amazon-assigned standing of a driver. Lower values rank first.
type Tier int

const (
	TierPlatinum Tier = iota
	TierGold
	TierSilver
	TierBronze
	TierPoor
	// TierUnknown orders after every known tier.
	TierUnknown
)

var tierNames = [...]string{"Platinum", "Gold", "Silver", "Bronze", "Poor", "Unknown"}

// ParseTier matches s case-insensitively against the known tier labels.
// It returns TierUnknown and false when s is not a known label.
func ParseTier(s string) (Tier, bool) {
	s = strings.TrimSpace(s)
	for i, name := range tierNames[:TierUnknown] {
		if strings.EqualFold(s, name) {
			return Tier(i), true
		}
	}
	return TierUnknown, false
}

// Ordinal returns the cascade position of t: Platinum(0) through Unknown(5).
func (t Tier) Ordinal() int {
	if t < TierPlatinum || t > TierUnknown {
		return int(TierUnknown)
	}
	return int(t)
}

func (t Tier) String() string {
	return tierNames[t.Ordinal()]
}

// MarshalJSON implements json.Marshaler.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t, _ = ParseTier(s)
	return nil
}
