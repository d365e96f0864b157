package sms

import (
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.SMSGatewayURL == "" {
		return &NoOpProvider{}
	}
	return NewGateway(Config{
		BaseURL:  cfg.SMSGatewayURL,
		APIKey:   cfg.SMSGatewayKey,
		SenderID: cfg.SMSSenderID,
	})
}
