package module

import (
	"strings"
	"time"

	"codecorpus/internal/adapters/llm"
	"codecorpus/internal/core/strategy"
	"codecorpus/internal/platform/config"
	perr "codecorpus/internal/platform/errors"
	"codecorpus/internal/services/sft/service"
)

// Providers lists the chat backends the generator can drive
var Providers = []string{"azure", "gemini"}

// Options holds configuration options for the prompt-pair generator
type Options struct {
	Provider string

	AzureEndpoint   string
	AzureDeployment string
	AzureAPIVersion string
	AzureAPIKey     string

	GeminiModel  string
	GeminiAPIKey string

	Temperature float32
	MaxTokens   int
	RPS         float64
	Timeout     time.Duration

	MaxCodeLength    int
	Strategies       []string // explicit menu by name; wins over FullMenu
	FullMenu         bool
	ResponseLanguage string
}

// FromConfig reads CORE_SFT_*, CORE_LLM_* and the provider API key secrets
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("CORE_SFT_")
	l := cfg.Prefix("CORE_LLM_")
	return Options{
		Provider:         s.MayEnum("PROVIDER", "azure", Providers...),
		AzureEndpoint:    cfg.MayString("AZURE_OPENAI_ENDPOINT", ""),
		AzureDeployment:  cfg.MayString("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureAPIVersion:  cfg.MayString("AZURE_OPENAI_API_VERSION", llm.DefaultAzureAPIVersion),
		AzureAPIKey:      cfg.MaySecret("AZURE_OPENAI_API_KEY", ""),
		GeminiModel:      l.MayString("GEMINI_MODEL", llm.DefaultGeminiModel),
		GeminiAPIKey:     cfg.MaySecret("GEMINI_API_KEY", ""),
		Temperature:      float32(l.MayFloat64("TEMPERATURE", float64(llm.DefaultSampling.Temperature))),
		MaxTokens:        l.MayInt("MAX_TOKENS", llm.DefaultSampling.MaxTokens),
		RPS:              l.MayFloat64("RPS", 2),
		Timeout:          l.MayDuration("TIMEOUT", 2*time.Minute),
		MaxCodeLength:    s.MayInt("MAX_CODE_LENGTH", service.DefaultMaxCodeLength),
		Strategies:       s.MayCSV("STRATEGIES", nil),
		FullMenu:         s.MayBool("FULL_MENU", false),
		ResponseLanguage: s.MayString("RESPONSE_LANGUAGE", strategy.DefaultResponseLanguage),
	}
}

func (o Options) sampling() llm.Sampling {
	return llm.Sampling{Temperature: o.Temperature, MaxTokens: o.MaxTokens}
}

func (o Options) pacing() llm.Pacing { return llm.Pacing{RPS: o.RPS, Timeout: o.Timeout} }

func (o Options) menu() ([]strategy.Kind, error) {
	if len(o.Strategies) > 0 {
		kinds := make([]strategy.Kind, 0, len(o.Strategies))
		for _, name := range o.Strategies {
			k, err := strategy.Parse(strings.TrimSpace(name))
			if err != nil {
				return nil, perr.WithField(err, "strategies")
			}
			kinds = append(kinds, k)
		}
		return kinds, nil
	}
	if o.FullMenu {
		return strategy.FullMenu(), nil
	}
	return strategy.DefaultMenu(), nil
}
