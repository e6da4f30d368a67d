// pkg/token/token.go
package token

import (
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verification failures. The HTTP layer collapses all of these into one
// generic response; the distinction exists for logs and tests.
var (
	ErrMalformed    = errors.New("token: malformed")
	ErrBadSignature = errors.New("token: bad signature")
	ErrExpired      = errors.New("token: expired")
)

const (
	claimTenantID = "tid"
	claimDomain   = "dom"
)

// Claims is the verified content of a bearer token.
type Claims struct {
	CredentialID string
	TenantID     string
	ShopDomain   string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Issuer signs and verifies HS256 bearer tokens with a process-wide secret.
// Verification is pure; the Issuer holds no per-request state.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New builds an Issuer. The secret is mandatory: callers must fail startup
// rather than fall back to a guessable default.
func New(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret not configured")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue produces a signed token carrying the credential/tenant identity.
func (i *Issuer) Issue(credentialID, tenantID, shopDomain string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	t, err := jwt.NewBuilder().
		Subject(credentialID).
		IssuedAt(now).
		Expiration(exp).
		Claim(claimTenantID, tenantID).
		Claim(claimDomain, shopDomain).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), exp, nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (i *Issuer) Verify(raw string) (Claims, error) {
	// Parse without verification first so garbage input is reported as
	// malformed rather than as a signature failure.
	if _, err := jwt.Parse([]byte(raw), jwt.WithVerify(false), jwt.WithValidate(false)); err != nil {
		return Claims{}, ErrMalformed
	}
	t, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, i.secret), jwt.WithValidate(false))
	if err != nil {
		return Claims{}, ErrBadSignature
	}
	if err := jwt.Validate(t, jwt.WithClock(jwt.ClockFunc(i.now))); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	c := Claims{
		CredentialID: t.Subject(),
		IssuedAt:     t.IssuedAt(),
		ExpiresAt:    t.Expiration(),
	}
	if v, ok := t.Get(claimTenantID); ok {
		c.TenantID, _ = v.(string)
	}
	if v, ok := t.Get(claimDomain); ok {
		c.ShopDomain, _ = v.(string)
	}
	if c.CredentialID == "" || c.TenantID == "" {
		return Claims{}, ErrMalformed
	}
	return c, nil
}
