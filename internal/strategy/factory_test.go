package strategy

import (
	"errors"
	"testing"
	"time"

	"token-strategy-lab/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func TestFromConfig_Defaults(t *testing.T) {
	for _, st := range domain.StrategyTypes {
		p, err := FromConfig(domain.StrategyConfig{StrategyType: st})
		if err != nil {
			t.Fatalf("FromConfig(%s) failed: %v", st, err)
		}
		if p.ID() != st {
			t.Errorf("expected ID %s, got %s", st, p.ID())
		}
	}
}

func TestFromConfig_SignalReversal(t *testing.T) {
	cfg := domain.StrategyConfig{
		StrategyType:     domain.StrategyTypeSignalReversal,
		MinGrade:         ptr(70.0),
		MaxHoldingReturn: ptr(0.2),
		MinSignalsReturn: ptr(0.5),
		SizingFraction:   ptr(0.1),
		HoldDays:         ptr(7),
	}

	p, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	sr, ok := p.(*SignalReversal)
	if !ok {
		t.Fatalf("expected *SignalReversal, got %T", p)
	}

	if sr.MinGrade != 70 {
		t.Errorf("expected MinGrade 70, got %f", sr.MinGrade)
	}
	if sr.MaxHoldingReturn != 0.2 {
		t.Errorf("expected MaxHoldingReturn 0.2, got %f", sr.MaxHoldingReturn)
	}
	if sr.MinSignalsReturn != 0.5 {
		t.Errorf("expected MinSignalsReturn 0.5, got %f", sr.MinSignalsReturn)
	}
	if sr.SizingFraction() != 0.1 {
		t.Errorf("expected sizing 0.1, got %f", sr.SizingFraction())
	}
	if sr.HoldDuration() != 7*24*time.Hour {
		t.Errorf("expected 7d hold, got %v", sr.HoldDuration())
	}
}

func TestFromConfig_LongTermHold(t *testing.T) {
	cfg := domain.StrategyConfig{
		StrategyType:     domain.StrategyTypeLongTermHold,
		MinHoldingReturn: ptr(2.0),
		SignalsRatio:     ptr(0.25),
	}

	p, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	lh, ok := p.(*LongTermHold)
	if !ok {
		t.Fatalf("expected *LongTermHold, got %T", p)
	}
	if lh.MinHoldingReturn != 2.0 || lh.SignalsRatio != 0.25 {
		t.Errorf("unexpected params: %+v", lh)
	}
	if lh.MinGrade != 88 || lh.Sizing != 0.15 {
		t.Errorf("defaults not kept: %+v", lh)
	}
}

func TestFromConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.StrategyConfig
		wantErr error
	}{
		{
			name:    "unknown type",
			cfg:     domain.StrategyConfig{StrategyType: "MEAN_REVERSION"},
			wantErr: ErrUnknownStrategyType,
		},
		{
			name:    "zero sizing",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeTrendFollowing, SizingFraction: ptr(0.0)},
			wantErr: ErrInvalidSizingFraction,
		},
		{
			name:    "sizing above one",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeTrendFollowing, SizingFraction: ptr(1.01)},
			wantErr: ErrInvalidSizingFraction,
		},
		{
			name:    "negative hold",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeSignalReversal, HoldDays: ptr(-1)},
			wantErr: ErrInvalidHoldDays,
		},
		{
			name:    "grade out of range",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeLongTermHold, MinGrade: ptr(101.0)},
			wantErr: ErrInvalidGrade,
		},
		{
			name:    "reversal param on trend following",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeTrendFollowing, MinSignalsReturn: ptr(1.0)},
			wantErr: ErrParamNotApplicable,
		},
		{
			name:    "long hold param on reversal",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeSignalReversal, SignalsRatio: ptr(0.5)},
			wantErr: ErrParamNotApplicable,
		},
		{
			name:    "negative signals ratio",
			cfg:     domain.StrategyConfig{StrategyType: domain.StrategyTypeLongTermHold, SignalsRatio: ptr(-0.5)},
			wantErr: ErrInvalidSignalsRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFromConfig_FullSizingAllowed(t *testing.T) {
	p, err := FromConfig(domain.StrategyConfig{
		StrategyType:   domain.StrategyTypeTrendFollowing,
		SizingFraction: ptr(1.0),
	})
	if err != nil {
		t.Fatalf("sizing 1.0 must be allowed: %v", err)
	}
	if p.SizingFraction() != 1.0 {
		t.Errorf("expected 1.0, got %f", p.SizingFraction())
	}
}

func TestFromNames(t *testing.T) {
	policies, err := FromNames("trend_following, SIGNAL_REVERSAL")
	if err != nil {
		t.Fatalf("FromNames failed: %v", err)
	}
	if len(policies) != 2 {
		t.Fatalf("expected 2 policies, got %d", len(policies))
	}
	if policies[0].ID() != domain.StrategyTypeTrendFollowing || policies[1].ID() != domain.StrategyTypeSignalReversal {
		t.Errorf("order not preserved: %s, %s", policies[0].ID(), policies[1].ID())
	}
}

func TestFromNames_Errors(t *testing.T) {
	if _, err := FromNames(" , "); !errors.Is(err, ErrEmptyStrategySelection) {
		t.Errorf("expected ErrEmptyStrategySelection, got %v", err)
	}
	if _, err := FromNames("LONG_TERM_HOLD,long_term_hold"); !errors.Is(err, ErrDuplicateStrategyType) {
		t.Errorf("expected ErrDuplicateStrategyType, got %v", err)
	}
	if _, err := FromNames("NOPE"); !errors.Is(err, ErrUnknownStrategyType) {
		t.Errorf("expected ErrUnknownStrategyType, got %v", err)
	}
}
