// pkg/commerce/seed.go
package commerce

import (
	"context"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"storesight/pkg/accounts"
)

// seedFile is the data section of the dev seed file. Entries are grouped by
// shop domain and resolved to tenant ids through the account store, mirroring
// how the ingestion pipeline attributes webhook events.
type seedFile struct {
	Data []struct {
		ShopDomain string `yaml:"shopDomain"`
		Products   []struct {
			ShopifyProductID string `yaml:"shopifyProductId"`
			Title            string `yaml:"title"`
			Vendor           string `yaml:"vendor"`
		} `yaml:"products"`
		Customers []struct {
			ShopifyCustomerID string `yaml:"shopifyCustomerId"`
			Email             string `yaml:"email"`
			FirstName         string `yaml:"firstName"`
			LastName          string `yaml:"lastName"`
			Orders            []struct {
				ShopifyOrderID  string `yaml:"shopifyOrderId"`
				TotalPrice      string `yaml:"totalPrice"`
				FinancialStatus string `yaml:"financialStatus"`
				Fulfilled       bool   `yaml:"fulfilled"`
			} `yaml:"orders"`
		} `yaml:"customers"`
	} `yaml:"data"`
}

// SeedFromFile loads demo commerce records from a YAML file. Tenants must
// already exist (see accounts.SeedFromFile, which runs first).
func SeedFromFile(ctx context.Context, store Store, acct accounts.Store, path string, log *zap.SugaredLogger) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}
	for _, d := range f.Data {
		t, err := acct.FindTenantByDomain(ctx, d.ShopDomain)
		if err != nil {
			log.Warnw("seed data: unknown tenant", "domain", d.ShopDomain)
			continue
		}
		for _, p := range d.Products {
			_, _ = store.AddProduct(ctx, t.ID, Product{
				ShopifyProductID: p.ShopifyProductID, Title: p.Title, Vendor: p.Vendor,
			})
		}
		for _, c := range d.Customers {
			stored, err := store.AddCustomer(ctx, t.ID, Customer{
				ShopifyCustomerID: c.ShopifyCustomerID, Email: c.Email,
				FirstName: c.FirstName, LastName: c.LastName,
			})
			if err != nil {
				log.Warnw("seed customer", "domain", d.ShopDomain, "err", err)
				continue
			}
			for _, o := range c.Orders {
				order, err := store.AddOrder(ctx, t.ID, Order{
					ShopifyOrderID: o.ShopifyOrderID, TotalPrice: o.TotalPrice,
					FinancialStatus: o.FinancialStatus,
				}, stored.ID)
				if err != nil {
					log.Warnw("seed order", "domain", d.ShopDomain, "err", err)
					continue
				}
				if o.Fulfilled {
					_ = store.AddFulfillment(ctx, t.ID, order.ID)
				}
			}
		}
	}
	return nil
}
