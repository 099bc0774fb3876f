package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/conf"
	"companysearch/internal/pkg/llm"
	"companysearch/internal/pkg/query"
)

const generatorCheckTimeout = 5 * time.Second

// NewGenerator builds the configured text generator and checks that its
// backend answers. It returns nil, which selects the rule-based strategies,
// for provider "none", an unknown provider, a hosted provider without a
// token, an unreachable backend or a model the backend does not serve.
func NewGenerator(c *conf.AI, logger log.Logger) llm.Generator {
	helper := log.NewHelper(log.With(logger, "module", "data/ai"))
	gen, model := newGenerator(c, helper)
	if gen == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), generatorCheckTimeout)
	defer cancel()
	if err := checkGenerator(ctx, gen, model); err != nil {
		helper.Warnf("ai backend unavailable, using rule-based strategies: %v", err)
		return nil
	}
	return gen
}

func checkGenerator(ctx context.Context, gen llm.Generator, model string) error {
	if p, ok := gen.(llm.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	if l, ok := gen.(llm.ModelLister); ok {
		models, err := l.ListModels(ctx)
		if err != nil {
			return err
		}
		if !llm.HasModel(models, model) {
			return fmt.Errorf("model %s is not available (have %s)", model, strings.Join(models, ", "))
		}
	}
	return nil
}

func newGenerator(c *conf.AI, helper *log.Helper) (llm.Generator, string) {
	if c == nil {
		return nil, ""
	}
	opts := llm.DefaultOptions()
	if c.MaxTokens > 0 {
		opts.MaxTokens = c.MaxTokens
	}
	if c.Temperature > 0 {
		opts.Temperature = c.Temperature
	}
	if c.TopP > 0 {
		opts.TopP = c.TopP
	}
	timeout := c.Timeout.Or(llm.DefaultTimeout)

	switch provider := strings.ToLower(strings.TrimSpace(c.Provider)); provider {
	case "huggingface":
		if c.Token == "" {
			helper.Warn("huggingface selected without a token, using rule-based normalization")
			return nil, ""
		}
		cfg := llm.DefaultHuggingFaceConfig()
		cfg.Token = c.Token
		cfg.Timeout = timeout
		cfg.Options = opts
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
		if c.Model != "" {
			cfg.Model = c.Model
		}
		helper.Infof("using huggingface model %s", cfg.Model)
		return llm.NewHuggingFaceClient(cfg), cfg.Model
	case "ollama":
		cfg := llm.DefaultOllamaConfig()
		cfg.Timeout = timeout
		cfg.Options = opts
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
		if c.Model != "" {
			cfg.Model = c.Model
		}
		helper.Infof("using ollama model %s at %s", cfg.Model, cfg.BaseURL)
		return llm.NewOllamaClient(cfg), cfg.Model
	case "vllm":
		cfg := llm.DefaultVLLMConfig()
		cfg.APIKey = c.Token
		cfg.Timeout = timeout
		cfg.Options = opts
		if c.BaseURL != "" {
			cfg.BaseURL = c.BaseURL
		}
		if c.Model != "" {
			cfg.Model = c.Model
		}
		helper.Infof("using vllm model %s at %s", cfg.Model, cfg.BaseURL)
		return llm.NewVLLMClient(cfg), cfg.Model
	case "", "none":
		helper.Info("ai disabled, using rule-based normalization")
		return nil, ""
	default:
		helper.Warnf("unknown ai provider %q, using rule-based normalization", provider)
		return nil, ""
	}
}

// NewNormalizer returns the query normalizer for gen. memo may be nil.
func NewNormalizer(c *conf.AI, gen llm.Generator, memo query.Memo, logger log.Logger) query.Normalizer {
	opts := []query.GenerativeOption{query.WithLogger(logger)}
	if c != nil {
		opts = append(opts, query.WithTimeout(c.Timeout.Or(llm.DefaultTimeout)))
	}
	if memo != nil {
		opts = append(opts, query.WithMemo(memo))
	}
	return query.NewNormalizer(gen, opts...)
}

// NewKeyBuilder returns the fingerprint builder.
func NewKeyBuilder(n query.Normalizer) *query.KeyBuilder {
	return query.NewKeyBuilder(n)
}

// NewKeywordExtractor returns the keyword extractor for gen.
func NewKeywordExtractor(c *conf.AI, gen llm.Generator, logger log.Logger) query.KeywordExtractor {
	opts := []query.GenerativeOption{query.WithLogger(logger)}
	if c != nil {
		opts = append(opts, query.WithTimeout(c.Timeout.Or(llm.DefaultTimeout)))
	}
	return query.NewKeywordExtractor(gen, opts...)
}

// NewSuggester returns the query suggester for gen.
func NewSuggester(c *conf.AI, gen llm.Generator, logger log.Logger) query.Suggester {
	opts := []query.GenerativeOption{query.WithLogger(logger)}
	if c != nil {
		opts = append(opts, query.WithTimeout(c.Timeout.Or(llm.DefaultTimeout)))
	}
	return query.NewSuggester(gen, opts...)
}
