// pkg/commerce/postgres.go
package commerce

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed commerce store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates the commerce tables if they do not already exist.
// Safe to call repeatedly (idempotent). Requires the tenants table from
// pkg/accounts.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS customers (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id),
  shopify_customer_id text,
  email text,
  first_name text,
  last_name text,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS products (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id),
  shopify_product_id text,
  title text,
  vendor text,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS orders (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id),
  shopify_order_id text,
  total_price text,
  financial_status text,
  customer_id uuid REFERENCES customers(id),
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS fulfillments (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id),
  order_id uuid REFERENCES orders(id),
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS products_tenant_created_idx ON products(tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS orders_tenant_created_idx ON orders(tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS customers_tenant_created_idx ON customers(tenant_id, created_at DESC);
`)
	return err
}

func (s *pgStore) RecentProducts(ctx context.Context, tenantID string, limit int) ([]Product, error) {
	rows, err := s.dbPool.Query(ctx, `
		SELECT id, COALESCE(shopify_product_id,''), COALESCE(title,''), COALESCE(vendor,''), created_at
		FROM products WHERE tenant_id=$1
		ORDER BY created_at DESC LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ShopifyProductID, &p.Title, &p.Vendor, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *pgStore) RecentOrders(ctx context.Context, tenantID string, limit int) ([]Order, error) {
	rows, err := s.dbPool.Query(ctx, `
		SELECT o.id, COALESCE(o.shopify_order_id,''), COALESCE(o.total_price,''), COALESCE(o.financial_status,''), o.created_at,
		       c.email, c.first_name, c.last_name
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.tenant_id=$1
		ORDER BY o.created_at DESC LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		var o Order
		var email, first, last sql.NullString
		if err := rows.Scan(&o.ID, &o.ShopifyOrderID, &o.TotalPrice, &o.FinancialStatus, &o.CreatedAt, &email, &first, &last); err != nil {
			return nil, err
		}
		if email.Valid || first.Valid || last.Valid {
			o.Customer = &OrderCustomer{Email: email.String, FirstName: first.String, LastName: last.String}
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *pgStore) RecentCustomers(ctx context.Context, tenantID string, limit int) ([]Customer, error) {
	rows, err := s.dbPool.Query(ctx, `
		SELECT c.id, COALESCE(c.shopify_customer_id,''), COALESCE(c.email,''), COALESCE(c.first_name,''), COALESCE(c.last_name,''), c.created_at,
		       COUNT(o.id) AS order_count
		FROM customers c
		LEFT JOIN orders o ON o.customer_id = c.id AND o.tenant_id = c.tenant_id
		WHERE c.tenant_id=$1
		GROUP BY c.id
		ORDER BY c.created_at DESC LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.ShopifyCustomerID, &c.Email, &c.FirstName, &c.LastName, &c.CreatedAt, &c.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *pgStore) Counts(ctx context.Context, tenantID string) (Stats, error) {
	var st Stats
	err := s.dbPool.QueryRow(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM products WHERE tenant_id=$1),
		  (SELECT COUNT(*) FROM customers WHERE tenant_id=$1),
		  (SELECT COUNT(*) FROM orders WHERE tenant_id=$1),
		  (SELECT COUNT(*) FROM fulfillments WHERE tenant_id=$1)
	`, tenantID).Scan(&st.Products, &st.Customers, &st.Orders, &st.Fulfillments)
	return st, err
}

func (s *pgStore) AddProduct(ctx context.Context, tenantID string, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := s.dbPool.QueryRow(ctx, `
		INSERT INTO products (id, tenant_id, shopify_product_id, title, vendor)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at
	`, p.ID, tenantID, p.ShopifyProductID, p.Title, p.Vendor)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *pgStore) AddCustomer(ctx context.Context, tenantID string, c Customer) (Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := s.dbPool.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, shopify_customer_id, email, first_name, last_name)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at
	`, c.ID, tenantID, c.ShopifyCustomerID, c.Email, c.FirstName, c.LastName)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *pgStore) AddOrder(ctx context.Context, tenantID string, o Order, customerID string) (Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	var cid any
	if customerID != "" {
		cid = customerID
	}
	row := s.dbPool.QueryRow(ctx, `
		INSERT INTO orders (id, tenant_id, shopify_order_id, total_price, financial_status, customer_id)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING created_at
	`, o.ID, tenantID, o.ShopifyOrderID, o.TotalPrice, o.FinancialStatus, cid)
	if err := row.Scan(&o.CreatedAt); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s *pgStore) AddFulfillment(ctx context.Context, tenantID, orderID string) error {
	var oid any
	if orderID != "" {
		oid = orderID
	}
	_, err := s.dbPool.Exec(ctx,
		`INSERT INTO fulfillments (id, tenant_id, order_id) VALUES ($1,$2,$3)`,
		uuid.NewString(), tenantID, oid)
	return err
}
