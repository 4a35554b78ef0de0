package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"token-strategy-lab/internal/domain"
)

func TestLoad_DefaultsMissingFields(t *testing.T) {
	input := `[
		{"TOKEN_SYMBOL": "CRV", "TM_TRADER_GRADE": 85, "HOLDING_RETURNS": -0.9423, "TRADING_SIGNALS_RETURNS": 6.8534, "TOKEN_TREND": 1},
		{"TM_TRADER_GRADE": 90},
		{"TOKEN_SYMBOL": "  ", "TOKEN_TREND": -1}
	]`

	snaps, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}

	if !snaps[0].IsTrendPositive() || snaps[0].SignalsReturn != 6.8534 {
		t.Errorf("unexpected first snapshot: %+v", snaps[0])
	}

	want := domain.AssetSnapshot{Symbol: domain.UnknownSymbol, Grade: 90}
	if snaps[1] != want {
		t.Errorf("defaults: got %+v, want %+v", snaps[1], want)
	}
	if snaps[1].IsTrendPositive() {
		t.Error("absent trend must not be positive")
	}

	if snaps[2].Symbol != domain.UnknownSymbol || snaps[2].Trend != -1 {
		t.Errorf("unexpected third snapshot: %+v", snaps[2])
	}
}

func TestLoad_KeepsDuplicatesInOrder(t *testing.T) {
	input := `[{"TOKEN_SYMBOL": "A"}, {"TOKEN_SYMBOL": "B"}, {"TOKEN_SYMBOL": "A"}]`

	snaps, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := []string{snaps[0].Symbol, snaps[1].Symbol, snaps[2].Symbol}
	if !reflect.DeepEqual(got, []string{"A", "B", "A"}) {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestLoad_Malformed(t *testing.T) {
	if _, err := Load(strings.NewReader(`{"TOKEN_SYMBOL": "A"}`)); err == nil {
		t.Error("expected error for non-array input")
	}
	if _, err := Load(strings.NewReader(`[{"TM_TRADER_GRADE": "high"}]`)); err == nil {
		t.Error("expected error for non-numeric grade")
	}
}

func TestNormalize_RejectsNonFinite(t *testing.T) {
	inf := math.Inf(1)
	_, err := RawSnapshot{HoldingReturn: &inf}.Normalize()
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestEncodeLoadFile(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, July2025()); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "july.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	snaps, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(snaps, July2025()) {
		t.Errorf("file contents differ from fixture:\n%+v", snaps)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
