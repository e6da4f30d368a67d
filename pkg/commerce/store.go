package commerce

import (
	"context"
)

// Store reads and writes tenant-partitioned commerce records. tenantID always
// comes from the verified request context, never from client input.
type Store interface {
	RecentProducts(ctx context.Context, tenantID string, limit int) ([]Product, error)
	RecentOrders(ctx context.Context, tenantID string, limit int) ([]Order, error)
	RecentCustomers(ctx context.Context, tenantID string, limit int) ([]Customer, error)
	Counts(ctx context.Context, tenantID string) (Stats, error)

	// Ingestion-side writes (webhook pipeline, seeding).
	AddProduct(ctx context.Context, tenantID string, p Product) (Product, error)
	AddCustomer(ctx context.Context, tenantID string, c Customer) (Customer, error)
	AddOrder(ctx context.Context, tenantID string, o Order, customerID string) (Order, error)
	AddFulfillment(ctx context.Context, tenantID, orderID string) error
}
