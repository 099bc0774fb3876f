package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"companysearch/internal/pkg/llm"
)

func TestRuleNormalizer(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"restaurant à lalala", "restaurant lalala"},
		{"Restaurant  à   Lalala ", "restaurant lalala"},
		{"  Coiffeur PRÈS de Glass", "coiffeur glass"},
		{"le garage du port", "garage port"},
		{"", ""},
		{"la les des", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := (RuleNormalizer{}).Normalize(context.Background(), tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGenerativeNormalizer_CleansOutput(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, `"cherche resto à libreville"`) {
			t.Errorf("prompt does not embed the query: %s", prompt)
		}
		return "\n  \"Restaurant Libreville\".\nautre ligne", nil
	})

	n := NewGenerativeNormalizer(gen)
	if got := n.Normalize(context.Background(), "cherche resto à libreville"); got != "restaurant libreville" {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestGenerativeNormalizer_Fallback(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.GeneratorFunc
	}{
		{"error", func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("503 model loading")
		}},
		{"empty", func(ctx context.Context, prompt string) (string, error) {
			return " \"\". ", nil
		}},
		{"timeout", func(ctx context.Context, prompt string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewGenerativeNormalizer(tt.gen, WithTimeout(20*time.Millisecond))
			if got := n.Normalize(context.Background(), "restaurant à lalala"); got != "restaurant lalala" {
				t.Errorf("Normalize() = %q, want rule-based result", got)
			}
		})
	}
}

type mapMemo struct {
	mu sync.Mutex
	m  map[string]string
}

func (m *mapMemo) Lookup(_ context.Context, raw string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[raw]
	return v, ok
}

func (m *mapMemo) Store(_ context.Context, raw, normalized string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[raw] = normalized
}

func TestGenerativeNormalizer_Memo(t *testing.T) {
	calls := 0
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "restaurant lalala", nil
	})
	memo := &mapMemo{m: map[string]string{}}

	n := NewGenerativeNormalizer(gen, WithMemo(memo))
	for i := 0; i < 3; i++ {
		if got := n.Normalize(context.Background(), "resto lalala"); got != "restaurant lalala" {
			t.Fatalf("Normalize() = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("generator called %d times, want 1", calls)
	}
}

func TestGenerativeNormalizer_FallbackNotMemoized(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("down")
	})
	memo := &mapMemo{m: map[string]string{}}

	NewGenerativeNormalizer(gen, WithMemo(memo)).Normalize(context.Background(), "resto lalala")
	if len(memo.m) != 0 {
		t.Errorf("fallback result was memoized: %v", memo.m)
	}
}

func TestNewNormalizer(t *testing.T) {
	if _, ok := NewNormalizer(nil).(RuleNormalizer); !ok {
		t.Error("nil generator should select RuleNormalizer")
	}
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) { return "x", nil })
	if _, ok := NewNormalizer(gen).(*GenerativeNormalizer); !ok {
		t.Error("configured generator should select GenerativeNormalizer")
	}
}
