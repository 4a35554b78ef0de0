package strategy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"token-strategy-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownStrategyType    = errors.New("unknown strategy type")
	ErrInvalidSizingFraction  = errors.New("sizing fraction must be in (0, 1]")
	ErrInvalidHoldDays        = errors.New("hold days must be non-negative")
	ErrInvalidGrade           = errors.New("min grade must be in [0, 100]")
	ErrParamNotApplicable     = errors.New("parameter not applicable to strategy type")
	ErrInvalidSignalsRatio    = errors.New("LONG_TERM_HOLD requires SignalsRatio >= 0")
	ErrDuplicateStrategyType  = errors.New("duplicate strategy type")
	ErrEmptyStrategySelection = errors.New("no strategies selected")
)

// FromConfig creates a Policy from domain.StrategyConfig.
// Nil parameters keep the strategy type's defaults.
// Returns clear errors for invalid or misplaced params.
func FromConfig(cfg domain.StrategyConfig) (Policy, error) {
	if err := validateCommon(cfg); err != nil {
		return nil, err
	}

	switch cfg.StrategyType {
	case domain.StrategyTypeSignalReversal:
		return fromSignalReversalConfig(cfg)
	case domain.StrategyTypeLongTermHold:
		return fromLongTermHoldConfig(cfg)
	case domain.StrategyTypeTrendFollowing:
		return fromTrendFollowingConfig(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategyType, cfg.StrategyType)
	}
}

// FromNames builds policies from a comma-separated list of strategy types,
// preserving the given order. Matching is case-insensitive.
func FromNames(names string) ([]Policy, error) {
	var policies []Policy
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(names, ",") {
		name := strings.ToUpper(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStrategyType, name)
		}
		seen[name] = struct{}{}

		p, err := FromConfig(domain.StrategyConfig{StrategyType: name})
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}

	if len(policies) == 0 {
		return nil, ErrEmptyStrategySelection
	}
	return policies, nil
}

// validateCommon checks parameters shared by all strategy types.
func validateCommon(cfg domain.StrategyConfig) error {
	if cfg.SizingFraction != nil && !validSizing(*cfg.SizingFraction) {
		return fmt.Errorf("%w: got %v", ErrInvalidSizingFraction, *cfg.SizingFraction)
	}
	if cfg.HoldDays != nil && *cfg.HoldDays < 0 {
		return ErrInvalidHoldDays
	}
	if cfg.MinGrade != nil && (*cfg.MinGrade < 0 || *cfg.MinGrade > 100) {
		return ErrInvalidGrade
	}
	return nil
}

// fromSignalReversalConfig creates SignalReversal from config.
func fromSignalReversalConfig(cfg domain.StrategyConfig) (*SignalReversal, error) {
	if cfg.MinHoldingReturn != nil || cfg.SignalsRatio != nil {
		return nil, fmt.Errorf("%w: %s", ErrParamNotApplicable, cfg.StrategyType)
	}

	s := NewSignalReversal()
	applyCommon(cfg, &s.MinGrade, &s.Sizing, &s.Hold)
	if cfg.MaxHoldingReturn != nil {
		s.MaxHoldingReturn = *cfg.MaxHoldingReturn
	}
	if cfg.MinSignalsReturn != nil {
		s.MinSignalsReturn = *cfg.MinSignalsReturn
	}
	return s, nil
}

// fromLongTermHoldConfig creates LongTermHold from config.
func fromLongTermHoldConfig(cfg domain.StrategyConfig) (*LongTermHold, error) {
	if cfg.MaxHoldingReturn != nil || cfg.MinSignalsReturn != nil {
		return nil, fmt.Errorf("%w: %s", ErrParamNotApplicable, cfg.StrategyType)
	}
	if cfg.SignalsRatio != nil && *cfg.SignalsRatio < 0 {
		return nil, ErrInvalidSignalsRatio
	}

	s := NewLongTermHold()
	applyCommon(cfg, &s.MinGrade, &s.Sizing, &s.Hold)
	if cfg.MinHoldingReturn != nil {
		s.MinHoldingReturn = *cfg.MinHoldingReturn
	}
	if cfg.SignalsRatio != nil {
		s.SignalsRatio = *cfg.SignalsRatio
	}
	return s, nil
}

// fromTrendFollowingConfig creates TrendFollowing from config.
func fromTrendFollowingConfig(cfg domain.StrategyConfig) (*TrendFollowing, error) {
	if cfg.MaxHoldingReturn != nil || cfg.MinSignalsReturn != nil ||
		cfg.MinHoldingReturn != nil || cfg.SignalsRatio != nil {
		return nil, fmt.Errorf("%w: %s", ErrParamNotApplicable, cfg.StrategyType)
	}

	s := NewTrendFollowing()
	applyCommon(cfg, &s.MinGrade, &s.Sizing, &s.Hold)
	return s, nil
}

func applyCommon(cfg domain.StrategyConfig, minGrade, sizing *float64, hold *time.Duration) {
	if cfg.MinGrade != nil {
		*minGrade = *cfg.MinGrade
	}
	if cfg.SizingFraction != nil {
		*sizing = *cfg.SizingFraction
	}
	if cfg.HoldDays != nil {
		*hold = time.Duration(*cfg.HoldDays) * day
	}
}
