// pkg/commerce/memory.go
package commerce

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is a mutex-guarded in-memory Store for dev bring-up and tests.
type memStore struct {
	mu           sync.Mutex
	products     map[string][]Product  // by tenant id
	orders       map[string][]Order    // by tenant id
	customers    map[string][]Customer // by tenant id
	fulfillments map[string]int        // by tenant id
	orderCust    map[string]string     // order id -> customer id
	seq          int                   // breaks created_at ties in recency sorts
	now          func() time.Time
}

func NewMemoryStore() Store {
	return &memStore{
		products:     map[string][]Product{},
		orders:       map[string][]Order{},
		customers:    map[string][]Customer{},
		fulfillments: map[string]int{},
		orderCust:    map[string]string{},
		now:          time.Now,
	}
}

func (m *memStore) stamp() time.Time {
	m.seq++
	return m.now().Add(time.Duration(m.seq) * time.Microsecond)
}

func (m *memStore) RecentProducts(ctx context.Context, tenantID string, limit int) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]Product(nil), m.products[tenantID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memStore) RecentOrders(ctx context.Context, tenantID string, limit int) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]Order(nil), m.orders[tenantID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memStore) RecentCustomers(ctx context.Context, tenantID string, limit int) ([]Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]Customer(nil), m.customers[tenantID]...)
	for i := range items {
		n := 0
		for _, o := range m.orders[tenantID] {
			if m.orderCust[o.ID] == items[i].ID {
				n++
			}
		}
		items[i].OrderCount = n
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memStore) Counts(ctx context.Context, tenantID string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		Products:     len(m.products[tenantID]),
		Customers:    len(m.customers[tenantID]),
		Orders:       len(m.orders[tenantID]),
		Fulfillments: m.fulfillments[tenantID],
	}, nil
}

func (m *memStore) AddProduct(ctx context.Context, tenantID string, p Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.stamp()
	}
	m.products[tenantID] = append(m.products[tenantID], p)
	return p, nil
}

func (m *memStore) AddCustomer(ctx context.Context, tenantID string, c Customer) (Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.stamp()
	}
	m.customers[tenantID] = append(m.customers[tenantID], c)
	return c, nil
}

func (m *memStore) AddOrder(ctx context.Context, tenantID string, o Order, customerID string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.stamp()
	}
	if customerID != "" {
		m.orderCust[o.ID] = customerID
		for _, c := range m.customers[tenantID] {
			if c.ID == customerID {
				o.Customer = &OrderCustomer{Email: c.Email, FirstName: c.FirstName, LastName: c.LastName}
				break
			}
		}
	}
	m.orders[tenantID] = append(m.orders[tenantID], o)
	return o, nil
}

func (m *memStore) AddFulfillment(ctx context.Context, tenantID, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fulfillments[tenantID]++
	return nil
}
