package reader

import (
	"math"
	"strings"
	"time"
)

// Pause multipliers keyed by the punctuation that ends a token. Modeled on
// how long a reader naturally lingers at each break.
const (
	sentenceFactor = 2.6
	clauseFactor   = 1.9
	commaFactor    = 1.4
	dashFactor     = 1.6
)

// Closing quotes and brackets are ignored when classifying trailing
// punctuation, so `word."` pauses like `word.`.
const closers = "\"'’”»)]}"

// Delay returns how long the token should stay on screen at the given
// words-per-minute rate. A rate of zero (or below) yields zero, which
// callers must treat as "do not schedule".
func Delay(token string, wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	base := 60000.0 / float64(wpm)
	return time.Duration(math.Round(base*pauseFactor(token))) * time.Millisecond
}

// pauseFactor picks the multiplier for a token. Only the first matching
// rule applies: sentence end beats colon/semicolon beats comma beats dash.
func pauseFactor(token string) float64 {
	trailing := strings.TrimRight(SplitWord(token).Trailing, closers)
	switch {
	case strings.ContainsAny(trailing, ".?!…"):
		return sentenceFactor
	case strings.ContainsAny(trailing, ":;"):
		return clauseFactor
	case strings.Contains(trailing, ","):
		return commaFactor
	case strings.Contains(token, "—") || strings.Contains(token, "–") || strings.Contains(token, "--"):
		return dashFactor
	}
	return 1.0
}
