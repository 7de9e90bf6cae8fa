package main

import (
	"context"
	"os"

	"codecorpus/internal/adapters/llm"
	"codecorpus/internal/core/dataset"
	"codecorpus/internal/core/strategy"
	"codecorpus/internal/modkit"
	"codecorpus/internal/platform/cli"
	"codecorpus/internal/platform/logger"
	sftdom "codecorpus/internal/services/sft/domain"
	sftmod "codecorpus/internal/services/sft/module"
	sftsvc "codecorpus/internal/services/sft/service"

	"github.com/spf13/cobra"
)

type options struct {
	inputJSON        string
	outputJSON       string
	provider         string
	azureEndpoint    string
	azureDeployment  string
	apiVersion       string
	geminiModel      string
	maxCodeLength    int
	strategies       int
	sampleSize       int
	skipErrors       bool
	fullMenu         bool
	menu             []string
	responseLanguage string
	temperature      float32
	maxTokens        int
}

func main() {
	var o options
	root := &cobra.Command{
		Use:   "corpus-sft",
		Short: "Generate instruction/response pairs from code records with a chat model",
		Long: `Reads a JSON array of code records and asks a chat model to explain,
document, complete or summarise each one, writing instruction/output pairs.

The API key is read from AZURE_OPENAI_API_KEY or GEMINI_API_KEY (or the *_FILE variants).`,
	}

	f := root.Flags()
	f.StringVar(&o.inputJSON, "input_json", "", "input JSON of code records (required)")
	f.StringVar(&o.outputJSON, "output_json", "", "output JSON of prompt pairs (required)")
	f.StringVar(&o.provider, "provider", "azure", "chat backend: azure or gemini")
	f.StringVar(&o.azureEndpoint, "azure_endpoint", "", "Azure OpenAI endpoint")
	f.StringVar(&o.azureDeployment, "azure_deployment", "", "Azure OpenAI deployment name")
	f.StringVar(&o.apiVersion, "api_version", llm.DefaultAzureAPIVersion, "Azure OpenAI api-version")
	f.StringVar(&o.geminiModel, "gemini_model", llm.DefaultGeminiModel, "Gemini model name")
	f.IntVar(&o.maxCodeLength, "max_code_length", sftsvc.DefaultMaxCodeLength, "skip records longer than this many characters")
	f.IntVar(&o.strategies, "strategies_per_code", 3, "strategies applied to each record")
	f.IntVar(&o.sampleSize, "sample_size", 0, "only use the first N records (0 = all)")
	f.BoolVar(&o.skipErrors, "skip_errors", true, "log failed strategies and continue instead of aborting")
	f.BoolVar(&o.fullMenu, "full_menu", false, "use all eight strategies instead of the default four")
	f.StringSliceVar(&o.menu, "strategies", nil, "explicit strategy names in order (overrides --full_menu)")
	f.StringVar(&o.responseLanguage, "response_language", strategy.DefaultResponseLanguage, "natural language of the answers")
	f.Float32Var(&o.temperature, "temperature", llm.DefaultSampling.Temperature, "sampling temperature")
	f.IntVar(&o.maxTokens, "max_tokens", llm.DefaultSampling.MaxTokens, "maximum tokens per reply")
	for _, name := range []string{"input_json", "output_json"} {
		_ = root.MarkFlagRequired(name)
	}

	cli.Command("corpus-sft", root, func(ctx context.Context, deps modkit.Deps) error {
		m, err := sftmod.New(ctx, deps, func(opts *sftmod.Options) {
			set := func(name string, apply func()) {
				if f.Changed(name) {
					apply()
				}
			}
			set("provider", func() { opts.Provider = o.provider })
			set("azure_endpoint", func() { opts.AzureEndpoint = o.azureEndpoint })
			set("azure_deployment", func() { opts.AzureDeployment = o.azureDeployment })
			set("api_version", func() { opts.AzureAPIVersion = o.apiVersion })
			set("gemini_model", func() { opts.GeminiModel = o.geminiModel })
			set("max_code_length", func() { opts.MaxCodeLength = o.maxCodeLength })
			set("full_menu", func() { opts.FullMenu = o.fullMenu })
			set("strategies", func() { opts.Strategies = o.menu })
			set("response_language", func() { opts.ResponseLanguage = o.responseLanguage })
			set("temperature", func() { opts.Temperature = o.temperature })
			set("max_tokens", func() { opts.MaxTokens = o.maxTokens })
		})
		if err != nil {
			return err
		}
		return run(ctx, deps, m, o)
	})
	os.Exit(cli.Execute(root))
}

func run(ctx context.Context, deps modkit.Deps, m *sftmod.Module, o options) error {
	log := logger.C(ctx)

	var records []dataset.CodeRecord
	if err := deps.Files().ReadJSON(ctx, o.inputJSON, &records); err != nil {
		return err
	}
	log.Info().Int("records", len(records)).Str("input", o.inputJSON).Msg("sft: loaded")

	pairs, err := modkit.MustPortsOf[sftdom.RunnerPort](m).Run(ctx, sftdom.Request{
		Records:             records,
		StrategiesPerRecord: o.strategies,
		SampleSize:          o.sampleSize,
		SkipErrors:          o.skipErrors,
	})
	if err != nil {
		return err
	}

	if err := deps.Files().WriteJSON(ctx, o.outputJSON, pairs); err != nil {
		return err
	}
	log.Info().Int("pairs", len(pairs)).Str("output", o.outputJSON).Msg("sft: saved")
	return nil
}
