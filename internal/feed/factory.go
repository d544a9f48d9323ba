package feed

import (
	"fmt"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/feed/limex"
	"github.com/quantprim/prism/internal/feed/oanda"
)

// New creates a data provider based on configuration.
func New(cfg config.FeedConfig) (Provider, error) {
	switch cfg.Provider {
	case "limex":
		p := limex.New(cfg.Limex.APIKey)
		if cfg.Limex.BaseURL != "" {
			p = limex.NewWithBaseURL(cfg.Limex.APIKey, cfg.Limex.BaseURL)
		}
		return p, nil
	case "oanda":
		p := oanda.New(cfg.OANDA.APIKey)
		if cfg.OANDA.BaseURL != "" {
			p = oanda.NewWithBaseURL(cfg.OANDA.APIKey, cfg.OANDA.BaseURL)
		}
		return p, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown feed provider: %s", cfg.Provider))
	}
}
