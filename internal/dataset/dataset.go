// Package dataset loads asset snapshots from JSON files.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"token-strategy-lab/internal/domain"
)

// ErrInvalidSnapshot is returned for records that cannot be normalized.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// RawSnapshot is the on-disk record. Every field is optional; absent
// fields are defaulted by Normalize.
type RawSnapshot struct {
	Symbol        *string  `json:"TOKEN_SYMBOL,omitempty"`
	Grade         *float64 `json:"TM_TRADER_GRADE,omitempty"`
	HoldingReturn *float64 `json:"HOLDING_RETURNS,omitempty"`
	SignalsReturn *float64 `json:"TRADING_SIGNALS_RETURNS,omitempty"`
	Trend         *int     `json:"TOKEN_TREND,omitempty"`
}

// Normalize converts a raw record into a domain snapshot.
// Absent numbers become 0, an absent trend becomes 0 (not positive) and an
// absent or blank symbol becomes domain.UnknownSymbol.
func (r RawSnapshot) Normalize() (domain.AssetSnapshot, error) {
	s := domain.AssetSnapshot{
		Symbol:        domain.UnknownSymbol,
		Grade:         deref(r.Grade),
		HoldingReturn: deref(r.HoldingReturn),
		SignalsReturn: deref(r.SignalsReturn),
	}
	if r.Symbol != nil && strings.TrimSpace(*r.Symbol) != "" {
		s.Symbol = strings.TrimSpace(*r.Symbol)
	}
	if r.Trend != nil {
		s.Trend = *r.Trend
	}

	for name, v := range map[string]float64{
		"grade":          s.Grade,
		"holding return": s.HoldingReturn,
		"signals return": s.SignalsReturn,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.AssetSnapshot{}, fmt.Errorf("%w: %s %s is not finite", ErrInvalidSnapshot, s.Symbol, name)
		}
	}
	return s, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Load decodes a JSON array of raw snapshots and normalizes each one.
// Order is preserved and duplicates are kept.
func Load(r io.Reader) ([]domain.AssetSnapshot, error) {
	var raw []RawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}

	out := make([]domain.AssetSnapshot, 0, len(raw))
	for i, rs := range raw {
		s, err := rs.Normalize()
		if err != nil {
			return nil, fmt.Errorf("snapshot %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile reads snapshots from a JSON file.
func LoadFile(path string) ([]domain.AssetSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	snaps, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snaps, nil
}

// Encode writes snapshots in the on-disk format.
func Encode(w io.Writer, snaps []domain.AssetSnapshot) error {
	raw := make([]RawSnapshot, len(snaps))
	for i := range snaps {
		s := snaps[i]
		raw[i] = RawSnapshot{
			Symbol:        &s.Symbol,
			Grade:         &s.Grade,
			HoldingReturn: &s.HoldingReturn,
			SignalsReturn: &s.SignalsReturn,
			Trend:         &s.Trend,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raw)
}
