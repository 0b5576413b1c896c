// Package token issues and verifies the signed, event-scoped session
// credentials that gate availability writes.
//
// A credential is header.payload.signature, each part base64url-encoded
// JSON, signed with HMAC-SHA512 under the server secret. The server keeps no
// session state: sign-out is the client deleting its credential, and expiry
// is enforced at verification time.
package token

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mfreitag/meetsync/internal/domain"
)

// TTL is how long an issued credential stays valid.
const TTL = 24 * time.Hour

// Payload binds an identity to a single event for a bounded time.
type Payload struct {
	EventID   string `json:"event"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// Sign issues a credential for name on eventID, valid for TTL from now.
func Sign(eventID, name, secret string, now time.Time) (string, error) {
	headerJSON, err := json.Marshal(header{Algorithm: "HS512", Type: "JWT"})
	if err != nil {
		return "", fmt.Errorf("token.Sign: marshal header: %w", err)
	}

	payloadJSON, err := json.Marshal(Payload{
		EventID:   eventID,
		Name:      name,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(TTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("token.Sign: marshal payload: %w", err)
	}

	enc := base64.RawURLEncoding
	signingInput := enc.EncodeToString(headerJSON) + "." + enc.EncodeToString(payloadJSON)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(signingInput))

	return signingInput + "." + enc.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks the signature, expiry, and event binding of a credential and
// returns its payload. Every failure mode unwraps to domain.ErrAuth; callers
// do not learn which check failed beyond the wrapped message.
func Verify(raw, eventID, secret string, now time.Time) (*Payload, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed credential", domain.ErrAuth)
	}

	enc := base64.RawURLEncoding

	sig, err := enc.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", domain.ErrAuth)
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return nil, fmt.Errorf("%w: invalid signature", domain.ErrAuth)
	}

	payloadJSON, err := enc.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrAuth)
	}
	var p Payload
	if err := json.Unmarshal(payloadJSON, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrAuth)
	}

	if now.Unix() >= p.ExpiresAt {
		return nil, fmt.Errorf("%w: credential expired", domain.ErrAuth)
	}
	if p.EventID != eventID {
		return nil, fmt.Errorf("%w: credential is for another event", domain.ErrAuth)
	}

	return &p, nil
}
