package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// ComputeTradeID returns SHA256(run_id|strategy_id|symbol|sequence), hex-encoded.
// The sequence makes duplicate snapshots of one symbol produce distinct ids.
func ComputeTradeID(runID, strategyID, symbol string, sequence int) string {
	return hashKey(runID, strategyID, symbol, strconv.Itoa(sequence))
}

func hashKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}
