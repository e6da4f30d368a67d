package commerce

import "time"

// Records ingested from upstream store events. Every row carries the owning
// tenant id; every query filters by it.

type Product struct {
	ID               string    `json:"id"`
	ShopifyProductID string    `json:"shopifyProductId"`
	Title            string    `json:"title"`
	Vendor           string    `json:"vendor"`
	CreatedAt        time.Time `json:"createdAt"`
}

type OrderCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Order struct {
	ID              string         `json:"id"`
	ShopifyOrderID  string         `json:"shopifyOrderId"`
	TotalPrice      string         `json:"totalPrice"`
	FinancialStatus string         `json:"financialStatus"`
	CreatedAt       time.Time      `json:"createdAt"`
	Customer        *OrderCustomer `json:"customer,omitempty"`
}

type Customer struct {
	ID                string    `json:"id"`
	ShopifyCustomerID string    `json:"shopifyCustomerId"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	CreatedAt         time.Time `json:"createdAt"`
	OrderCount        int       `json:"orderCount"`
}

// Stats are the per-tenant record counts shown on the account page.
type Stats struct {
	Products     int `json:"products"`
	Customers    int `json:"customers"`
	Orders       int `json:"orders"`
	Fulfillments int `json:"fulfillments"`
}
