// internal/llm/factory/factory.go
package factory

import (
	"fmt"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
	"github.com/quantprim/prism/internal/llm"
	"github.com/quantprim/prism/internal/llm/claude"
	"github.com/quantprim/prism/internal/llm/openai"
)

// New creates an LLM provider based on configuration.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}
