// pkg/accounts/seed.go
package accounts

import (
	"context"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the tenants section of the dev seed file. It stands in for the
// webhook ingestion pipeline, which creates tenants before their owners
// register credentials.
//
// tenants:
//   - shopDomain: acme.myshopify.com
//     webhookSecret: abc123
type SeedFile struct {
	Tenants []struct {
		ShopDomain    string `yaml:"shopDomain"`
		WebhookSecret string `yaml:"webhookSecret"`
	} `yaml:"tenants"`
}

// SeedFromFile loads ingestion-created tenants from a YAML file. Missing file
// or empty path is not an error; individual entries are skipped on failure.
func SeedFromFile(ctx context.Context, store Store, path string, log *zap.SugaredLogger) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f SeedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}
	for _, e := range f.Tenants {
		if e.ShopDomain == "" {
			continue
		}
		if _, err := store.SeedTenant(ctx, e.ShopDomain, e.WebhookSecret); err != nil {
			log.Warnw("seed tenant", "domain", e.ShopDomain, "err", err)
		}
	}
	return nil
}
