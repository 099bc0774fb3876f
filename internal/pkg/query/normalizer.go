package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"companysearch/internal/pkg/llm"
)

// Normalizer turns a raw query into its canonical form. It never fails.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) string
}

// Memo remembers successful generative normalizations.
type Memo interface {
	Lookup(ctx context.Context, raw string) (string, bool)
	Store(ctx context.Context, raw, normalized string)
}

var normalizerStopWords = newWordSet(
	"le", "la", "les", "un", "une", "des", "du", "de",
	"à", "au", "aux", "en", "près", "dans",
)

// RuleNormalizer is the deterministic normalizer: lowercase, NFC, drop
// articles and prepositions, collapse whitespace.
type RuleNormalizer struct{}

// Normalize implements Normalizer.
func (RuleNormalizer) Normalize(_ context.Context, raw string) string {
	fields := strings.Fields(fold(raw))
	kept := fields[:0]
	for _, f := range fields {
		if normalizerStopWords.has(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

const normalizePrompt = `Normalise cette recherche en français du Gabon en retirant les mots inutiles et en gardant seulement le type d'activité et la localisation.
Exemples:
- "restaurant à lalala" → "restaurant lalala"
- "cherche resto à libreville" → "restaurant libreville"
- "coiffeur près de glass" → "coiffeur glass"
- "salon de coiffure owendo" → "coiffeur owendo"

Recherche: "%s"
Normalisé:`

// GenerativeNormalizer asks a text generator for the canonical form and falls
// back to Fallback on any failure.
type GenerativeNormalizer struct {
	gen      llm.Generator
	fallback Normalizer
	memo     Memo
	timeout  time.Duration
	log      *log.Helper
}

// GenerativeOption configures the generative strategies.
type GenerativeOption func(*generativeOptions)

type generativeOptions struct {
	timeout time.Duration
	memo    Memo
	logger  log.Logger
}

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) GenerativeOption {
	return func(o *generativeOptions) { o.timeout = d }
}

// WithMemo caches successful generative answers.
func WithMemo(m Memo) GenerativeOption {
	return func(o *generativeOptions) { o.memo = m }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) GenerativeOption {
	return func(o *generativeOptions) { o.logger = l }
}

func buildOptions(opts []GenerativeOption) generativeOptions {
	o := generativeOptions{timeout: llm.DefaultTimeout, logger: log.DefaultLogger}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = llm.DefaultTimeout
	}
	return o
}

// NewGenerativeNormalizer returns a normalizer backed by gen.
func NewGenerativeNormalizer(gen llm.Generator, opts ...GenerativeOption) *GenerativeNormalizer {
	o := buildOptions(opts)
	return &GenerativeNormalizer{
		gen:      gen,
		fallback: RuleNormalizer{},
		memo:     o.memo,
		timeout:  o.timeout,
		log:      log.NewHelper(log.With(o.logger, "module", "query/normalizer")),
	}
}

// Normalize implements Normalizer.
func (n *GenerativeNormalizer) Normalize(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if n.memo != nil {
		if v, ok := n.memo.Lookup(ctx, raw); ok {
			return v
		}
	}

	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	out, err := n.gen.Generate(cctx, fmt.Sprintf(normalizePrompt, raw))
	if err != nil {
		n.log.WithContext(ctx).Warnf("ai normalization failed, using rules: %v", err)
		return n.fallback.Normalize(ctx, raw)
	}

	cleaned := cleanNormalized(out)
	if cleaned == "" {
		n.log.WithContext(ctx).Warn("ai normalization returned nothing, using rules")
		return n.fallback.Normalize(ctx, raw)
	}

	n.log.WithContext(ctx).Debugf("ai normalization: %q -> %q", raw, cleaned)
	if n.memo != nil {
		n.memo.Store(ctx, raw, cleaned)
	}
	return cleaned
}

// cleanNormalized keeps the first non-empty line of a completion, without
// quotes or a trailing period.
func cleanNormalized(out string) string {
	var line string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.NewReplacer(`"`, "", "'", "", "`", "", "«", "", "»", "").Replace(line)
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, ".")
	return strings.Join(strings.Fields(fold(line)), " ")
}

// NewNormalizer picks the generative strategy when gen is set and the rule
// strategy otherwise.
func NewNormalizer(gen llm.Generator, opts ...GenerativeOption) Normalizer {
	if gen == nil {
		return RuleNormalizer{}
	}
	return NewGenerativeNormalizer(gen, opts...)
}
