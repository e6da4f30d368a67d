// pkg/accounts/memory.go
package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is a mutex-guarded in-memory Store for dev bring-up and tests.
type memStore struct {
	mu          sync.Mutex
	tenants     map[string]Tenant     // by shop domain
	credentials map[string]Credential // by shop domain
	now         func() time.Time
}

func NewMemoryStore() Store {
	return &memStore{
		tenants:     map[string]Tenant{},
		credentials: map[string]Credential{},
		now:         time.Now,
	}
}

func (m *memStore) FindTenantByDomain(ctx context.Context, domain string) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tenants[domain]; ok {
		return t, nil
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) TenantByID(ctx context.Context, id string) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) RotateWebhookSecret(ctx context.Context, tenantID, secret string) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for dom, t := range m.tenants {
		if t.ID == tenantID {
			t.WebhookSecret = secret
			m.tenants[dom] = t
			return t, nil
		}
	}
	return Tenant{}, ErrNotFound
}

func (m *memStore) FindCredentialByDomain(ctx context.Context, domain string) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.credentials[domain]; ok {
		return c, nil
	}
	return Credential{}, ErrNotFound
}

func (m *memStore) CredentialByID(ctx context.Context, id string) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.credentials {
		if c.ID == id {
			return c, nil
		}
	}
	return Credential{}, ErrNotFound
}

func (m *memStore) TouchLastLogin(ctx context.Context, credentialID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for dom, c := range m.credentials {
		if c.ID == credentialID {
			c.UpdatedAt = m.now()
			m.credentials[dom] = c
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) RegisterCredential(ctx context.Context, domain, passwordHash, secret string) (Credential, Tenant, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credentials[domain]; ok {
		return Credential{}, Tenant{}, false, ErrAlreadyExists
	}
	t, existed := m.tenants[domain]
	if existed {
		t.WebhookSecret = secret
	} else {
		t = Tenant{
			ID:            uuid.NewString(),
			ShopDomain:    domain,
			WebhookSecret: secret,
			CreatedAt:     m.now(),
		}
	}
	c := Credential{
		ID:           uuid.NewString(),
		TenantID:     t.ID,
		ShopDomain:   domain,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    m.now(),
		UpdatedAt:    m.now(),
	}
	m.tenants[domain] = t
	m.credentials[domain] = c
	return c, t, existed, nil
}

func (m *memStore) SetActive(ctx context.Context, credentialID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for dom, c := range m.credentials {
		if c.ID == credentialID {
			c.Active = active
			m.credentials[dom] = c
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) SeedTenant(ctx context.Context, domain, secret string) (Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.tenants[domain]; ok {
		return cur, nil
	}
	t := Tenant{
		ID:            uuid.NewString(),
		ShopDomain:    domain,
		WebhookSecret: secret,
		CreatedAt:     m.now(),
	}
	m.tenants[domain] = t
	return t, nil
}
