package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mfreitag/meetsync/internal/domain"
	"github.com/mfreitag/meetsync/internal/repo"
	"github.com/mfreitag/meetsync/internal/token"
)

// AccessService implements the per-(event, identity) sign-in state machine:
// SignedOut → Authenticated, nothing further. The server keeps no session
// state; authentication is carried entirely by the signed credential.
type AccessService struct {
	repo   repo.EventRepo
	secret string
	now    func() time.Time
}

// NewAccessService constructs an AccessService signing credentials with
// secret. now is injectable for expiry tests; pass nil for time.Now.
func NewAccessService(r repo.EventRepo, secret string, now func() time.Time) *AccessService {
	if now == nil {
		now = time.Now
	}
	return &AccessService{repo: r, secret: secret, now: now}
}

// SignIn authenticates (or creates) an identity on an event and issues a
// credential valid for 24 hours.
//
// Rules, in order:
//   - empty name → validation error
//   - event requires a password (response limit set) and none supplied → auth error
//   - name matches an existing response: password checked only when the
//     event requires one; mismatch → auth error
//   - name is new and the limit is reached → locked error naming the limit
//   - name is new and permitted → response created with empty availability
func (s *AccessService) SignIn(ctx context.Context, eventID, name, password string) (string, domain.Response, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.Response{}, &domain.ValidationError{Fields: []string{"userName"}}
	}

	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return "", domain.Response{}, fmt.Errorf("service.AccessService.SignIn: %w", err)
	}

	if event.RequiresPassword() && password == "" {
		return "", domain.Response{}, fmt.Errorf("%w: this event requires a password", domain.ErrAuth)
	}

	existing := event.FindResponse(name)
	if existing != nil {
		if event.RequiresPassword() {
			if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
				return "", domain.Response{}, fmt.Errorf("%w: incorrect password", domain.ErrAuth)
			}
		}
		return s.issue(event.ID, *existing)
	}

	if event.LockedForNew() {
		return "", domain.Response{}, &domain.LockedError{Limit: *event.ResponseLimit}
	}

	resp := domain.Response{Name: strings.TrimSpace(name), Password: password}
	if err := hashResponsePassword(&resp); err != nil {
		return "", domain.Response{}, fmt.Errorf("service.AccessService.SignIn: %w", err)
	}
	created, err := s.repo.CreateResponse(ctx, event.ID, resp)
	if err != nil {
		return "", domain.Response{}, fmt.Errorf("service.AccessService.SignIn: %w", err)
	}
	return s.issue(event.ID, created)
}

// Verify checks a presented credential against an event and returns the
// authenticated identity name. Missing, invalid, expired, and cross-event
// credentials all unwrap to domain.ErrAuth.
func (s *AccessService) Verify(eventID, credential string) (string, error) {
	if credential == "" {
		return "", fmt.Errorf("%w: no credential", domain.ErrAuth)
	}
	payload, err := token.Verify(credential, eventID, s.secret, s.now())
	if err != nil {
		return "", fmt.Errorf("service.AccessService.Verify: %w", err)
	}
	return payload.Name, nil
}

// issue signs a credential for the identity and strips stored secrets from
// the returned response.
func (s *AccessService) issue(eventID string, resp domain.Response) (string, domain.Response, error) {
	credential, err := token.Sign(eventID, resp.Name, s.secret, s.now())
	if err != nil {
		return "", domain.Response{}, fmt.Errorf("service.AccessService: issue credential: %w", err)
	}
	resp.Password = ""
	resp.PasswordHash = ""
	return credential, resp, nil
}
