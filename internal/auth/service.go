package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storesight/pkg/accounts"
	"storesight/pkg/commerce"
	"storesight/pkg/token"
)

// Service-level failures. The HTTP layer maps these to the response taxonomy;
// ErrInvalidCredentials covers unknown domain and wrong password alike so
// responses cannot be used for account enumeration.
var (
	ErrMissingFields      = errors.New("auth: shopDomain and password are required")
	ErrInvalidDomain      = errors.New("auth: invalid shop domain")
	ErrAlreadyRegistered  = errors.New("auth: already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrAccountGone        = errors.New("auth: account record not found")
	ErrStorageUnavailable = errors.New("auth: storage unavailable")
)

var shopDomainRE = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// Service carries the registration and login logic over the account and
// commerce stores. All storage calls run under a bounded deadline.
type Service struct {
	store      accounts.Store
	data       commerce.Store
	issuer     *token.Issuer
	log        *zap.SugaredLogger
	bcryptCost int
	timeout    time.Duration
}

func NewService(store accounts.Store, data commerce.Store, issuer *token.Issuer, log *zap.SugaredLogger, bcryptCost int, timeout time.Duration) *Service {
	if bcryptCost == 0 {
		bcryptCost = 12
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{store: store, data: data, issuer: issuer, log: log, bcryptCost: bcryptCost, timeout: timeout}
}

// Session is the outcome of a successful register or login.
type Session struct {
	Token           string
	Credential      accounts.Credential
	Tenant          accounts.Tenant
	HasExistingData bool
}

// Register validates the request, hashes the password and runs the atomic
// tenant/credential reconciliation. When the tenant predates registration
// (created by the ingestion pipeline) its webhook secret is rotated, so
// re-registration after a secret leak works as the recovery path.
func (s *Service) Register(ctx context.Context, shopDomain, password string) (Session, error) {
	domain := strings.ToLower(strings.TrimSpace(shopDomain))
	if domain == "" || password == "" {
		return Session{}, ErrMissingFields
	}
	if !shopDomainRE.MatchString(domain) {
		return Session{}, ErrInvalidDomain
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Session{}, err
	}
	secret, err := newWebhookSecret()
	if err != nil {
		return Session{}, err
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cred, tenant, existed, err := s.store.RegisterCredential(sctx, domain, string(hash), secret)
	if err != nil {
		if errors.Is(err, accounts.ErrAlreadyExists) {
			return Session{}, ErrAlreadyRegistered
		}
		return Session{}, s.storage("register", err)
	}

	tok, _, err := s.issuer.Issue(cred.ID, tenant.ID, tenant.ShopDomain)
	if err != nil {
		return Session{}, err
	}
	s.log.Infow("store registered", "domain", domain, "tenant", tenant.ID, "existing_data", existed)
	return Session{Token: tok, Credential: cred, Tenant: tenant, HasExistingData: existed}, nil
}

// Login verifies the credential and refreshes its last-login marker. Failed
// attempts leave the marker untouched.
func (s *Service) Login(ctx context.Context, shopDomain, password string) (Session, error) {
	domain := strings.ToLower(strings.TrimSpace(shopDomain))
	if domain == "" || password == "" {
		return Session{}, ErrMissingFields
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cred, err := s.store.FindCredentialByDomain(sctx, domain)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, s.storage("login lookup", err)
	}
	if !cred.Active {
		return Session{}, ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := s.store.TouchLastLogin(sctx, cred.ID); err != nil {
		// Last-login is a best-effort marker; the login itself stands.
		s.log.Warnw("touch last login", "credential", cred.ID, "err", err)
	} else {
		cred.UpdatedAt = time.Now()
	}

	tenant, err := s.store.TenantByID(sctx, cred.TenantID)
	if err != nil {
		return Session{}, s.storage("login tenant", err)
	}
	tok, _, err := s.issuer.Issue(cred.ID, tenant.ID, tenant.ShopDomain)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, Credential: cred, Tenant: tenant}, nil
}

// Account is the /me view: credential, owning tenant and its data counts.
type Account struct {
	Credential accounts.Credential
	Tenant     accounts.Tenant
	Stats      commerce.Stats
}

// Me resolves the caller's account from verified claims.
func (s *Service) Me(ctx context.Context, credentialID string) (Account, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	cred, err := s.store.CredentialByID(sctx, credentialID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return Account{}, ErrAccountGone
		}
		return Account{}, s.storage("me credential", err)
	}
	tenant, err := s.store.TenantByID(sctx, cred.TenantID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return Account{}, ErrAccountGone
		}
		return Account{}, s.storage("me tenant", err)
	}
	stats, err := s.data.Counts(sctx, tenant.ID)
	if err != nil {
		return Account{}, s.storage("me stats", err)
	}
	return Account{Credential: cred, Tenant: tenant, Stats: stats}, nil
}

// UpdateWebhookSecret replaces the tenant's webhook secret. tenantID comes
// from verified claims, never from the request body.
func (s *Service) UpdateWebhookSecret(ctx context.Context, tenantID, secret string) (accounts.Tenant, error) {
	if strings.TrimSpace(secret) == "" {
		return accounts.Tenant{}, ErrMissingFields
	}
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	t, err := s.store.RotateWebhookSecret(sctx, tenantID, secret)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return accounts.Tenant{}, ErrAccountGone
		}
		return accounts.Tenant{}, s.storage("rotate secret", err)
	}
	return t, nil
}

// Dashboard is the recent-activity view, strictly scoped to one tenant.
type Dashboard struct {
	RecentProducts  []commerce.Product
	RecentOrders    []commerce.Order
	RecentCustomers []commerce.Customer
}

const dashboardLimit = 5

func (s *Service) DashboardData(ctx context.Context, tenantID string) (Dashboard, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	products, err := s.data.RecentProducts(sctx, tenantID, dashboardLimit)
	if err != nil {
		return Dashboard{}, s.storage("dashboard products", err)
	}
	orders, err := s.data.RecentOrders(sctx, tenantID, dashboardLimit)
	if err != nil {
		return Dashboard{}, s.storage("dashboard orders", err)
	}
	customers, err := s.data.RecentCustomers(sctx, tenantID, dashboardLimit)
	if err != nil {
		return Dashboard{}, s.storage("dashboard customers", err)
	}
	return Dashboard{RecentProducts: products, RecentOrders: orders, RecentCustomers: customers}, nil
}

// storage classifies a backend failure: deadline and cancellation surface as
// retryable ErrStorageUnavailable, anything else stays opaque (500). Backend
// error text is logged here and never forwarded to clients.
func (s *Service) storage(op string, err error) error {
	s.log.Errorw("storage failure", "op", op, "err", err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrStorageUnavailable
	}
	return err
}

func newWebhookSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
