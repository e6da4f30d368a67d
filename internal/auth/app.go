package auth

import (
	"go.uber.org/zap"

	"storesight/pkg/accounts"
	"storesight/pkg/commerce"
	"storesight/pkg/config"
	"storesight/pkg/token"
)

// App is the auth-service application container. Handlers and middleware
// wiring have methods on this type.
//
// Keep it lean: shared deps and config only. Request-scoped work goes
// through context.
type App struct {
	log    *zap.SugaredLogger
	cfg    config.Config
	svc    *Service
	issuer *token.Issuer
}

// New constructs App. It fails when the token signing secret is missing;
// the service must not start with a guessable default.
func New(log *zap.SugaredLogger, cfg config.Config, store accounts.Store, data commerce.Store) (*App, error) {
	issuer, err := token.New(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	svc := NewService(store, data, issuer, log, cfg.BcryptCost, cfg.StoreTimeout)
	return &App{log: log, cfg: cfg, svc: svc, issuer: issuer}, nil
}
