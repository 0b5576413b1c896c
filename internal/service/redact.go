package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/mfreitag/meetsync/internal/domain"
)

// pseudonym derives the stable anonymized label for a hidden participant.
// Keyed HMAC over event id and normalized name: deterministic per (event,
// identity), different across events, and not reproducible without the
// server secret, so a viewer cannot confirm a guessed name offline.
func pseudonym(secret, eventID, name string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(eventID))
	mac.Write([]byte{0})
	mac.Write([]byte(domain.NormalizeName(name)))
	return "Guest-" + hex.EncodeToString(mac.Sum(nil))[:8]
}
