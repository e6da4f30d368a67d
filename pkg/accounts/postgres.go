// pkg/accounts/postgres.go
package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storesight/pkg/db"
)

// pgStore implements Store backed by PostgreSQL. The unique index on
// shop_domain is the authoritative de-duplication mechanism for concurrent
// registrations.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed account store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY,
  shop_domain text UNIQUE NOT NULL,
  webhook_secret text NOT NULL,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS credentials (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id),
  shop_domain text UNIQUE NOT NULL,
  password_hash text NOT NULL,
  active boolean NOT NULL DEFAULT true,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

const tenantCols = `id, shop_domain, webhook_secret, created_at`
const credentialCols = `id, tenant_id, shop_domain, password_hash, active, created_at, updated_at`

func scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	if err := row.Scan(&t.ID, &t.ShopDomain, &t.WebhookSecret, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

func scanCredential(row pgx.Row) (Credential, error) {
	var c Credential
	if err := row.Scan(&c.ID, &c.TenantID, &c.ShopDomain, &c.PasswordHash, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	return c, nil
}

func (s *pgStore) FindTenantByDomain(ctx context.Context, domain string) (Tenant, error) {
	return scanTenant(s.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE shop_domain=$1`, domain))
}

func (s *pgStore) TenantByID(ctx context.Context, id string) (Tenant, error) {
	return scanTenant(s.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id=$1`, id))
}

func (s *pgStore) RotateWebhookSecret(ctx context.Context, tenantID, secret string) (Tenant, error) {
	return scanTenant(s.dbPool.QueryRow(ctx,
		`UPDATE tenants SET webhook_secret=$1 WHERE id=$2 RETURNING `+tenantCols, secret, tenantID))
}

func (s *pgStore) FindCredentialByDomain(ctx context.Context, domain string) (Credential, error) {
	return scanCredential(s.dbPool.QueryRow(ctx, `SELECT `+credentialCols+` FROM credentials WHERE shop_domain=$1`, domain))
}

func (s *pgStore) CredentialByID(ctx context.Context, id string) (Credential, error) {
	return scanCredential(s.dbPool.QueryRow(ctx, `SELECT `+credentialCols+` FROM credentials WHERE id=$1`, id))
}

func (s *pgStore) TouchLastLogin(ctx context.Context, credentialID string) error {
	tag, err := s.dbPool.Exec(ctx, `UPDATE credentials SET updated_at=NOW() WHERE id=$1`, credentialID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) SetActive(ctx context.Context, credentialID string, active bool) error {
	tag, err := s.dbPool.Exec(ctx, `UPDATE credentials SET active=$1 WHERE id=$2`, active, credentialID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) SeedTenant(ctx context.Context, domain, secret string) (Tenant, error) {
	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO tenants (id, shop_domain, webhook_secret) VALUES ($1,$2,$3) ON CONFLICT (shop_domain) DO NOTHING`,
		uuid.NewString(), domain, secret)
	if err != nil {
		return Tenant{}, err
	}
	return s.FindTenantByDomain(ctx, domain)
}

func (s *pgStore) RegisterCredential(ctx context.Context, domain, passwordHash, secret string) (Credential, Tenant, bool, error) {
	var cred Credential
	var t Tenant
	var existed bool
	err := db.InTx(ctx, s.dbPool, func(tx pgx.Tx) error {
		// Lock the tenant row (if any) so a concurrent registration for the
		// same domain serializes on it.
		row := tx.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE shop_domain=$1 FOR UPDATE`, domain)
		found, err := scanTenant(row)
		switch {
		case err == nil:
			existed = true
			t, err = scanTenant(tx.QueryRow(ctx,
				`UPDATE tenants SET webhook_secret=$1 WHERE id=$2 RETURNING `+tenantCols, secret, found.ID))
			if err != nil {
				return err
			}
		case errors.Is(err, ErrNotFound):
			t, err = scanTenant(tx.QueryRow(ctx,
				`INSERT INTO tenants (id, shop_domain, webhook_secret) VALUES ($1,$2,$3) RETURNING `+tenantCols,
				uuid.NewString(), domain, secret))
			if err != nil {
				if isUniqueViolation(err) {
					// Lost the race on tenant creation; surface as conflict and
					// let the client retry via login.
					return ErrAlreadyExists
				}
				return err
			}
		default:
			return err
		}
		cred, err = scanCredential(tx.QueryRow(ctx,
			`INSERT INTO credentials (id, tenant_id, shop_domain, password_hash) VALUES ($1,$2,$3,$4) RETURNING `+credentialCols,
			uuid.NewString(), t.ID, domain, passwordHash))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return Credential{}, Tenant{}, false, err
	}
	return cred, t, existed, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
