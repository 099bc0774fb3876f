// Package conf holds the service configuration.
package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

type Bootstrap struct {
	Server    *Server    `json:"server"`
	Data      *Data      `json:"data"`
	AI        *AI        `json:"ai"`
	Cache     *Cache     `json:"cache"`
	Providers *Providers `json:"providers"`
}

type Server struct {
	HTTP *Server_HTTP `json:"http"`
}

type Server_HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database *Data_Database `json:"database"`
	Redis    *Data_Redis    `json:"redis"`
}

// Data_Database is optional: an empty Source selects the in-memory store.
type Data_Database struct {
	Driver      string     `json:"driver"`
	Source      string     `json:"source"`
	AutoMigrate bool       `json:"auto_migrate"`
	Pool        *Data_Pool `json:"pool"`
}

type Data_Pool struct {
	MaxOpenConns    int32 `json:"max_open_conns"`
	MinIdleConns    int32 `json:"min_idle_conns"`
	MaxConnLifetime int32 `json:"max_conn_lifetime"`  // minutes
	MaxConnIdleTime int32 `json:"max_conn_idle_time"` // minutes
}

// Data_Redis is optional: an empty Addr disables the prefilter and memo.
type Data_Redis struct {
	Network      string   `json:"network"`
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	DB           int      `json:"db"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
}

// AI selects the text-generation backend. Provider is one of
// "huggingface", "ollama", "vllm" or "none".
type AI struct {
	Provider    string   `json:"provider"`
	BaseURL     string   `json:"base_url"`
	Model       string   `json:"model"`
	Token       string   `json:"token"`
	Timeout     Duration `json:"timeout"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	MemoTTL     Duration `json:"memo_ttl"`
}

type Cache struct {
	TTL           Duration         `json:"ttl"`
	SweepInterval Duration         `json:"sweep_interval"`
	SmartLimit    int              `json:"smart_limit"`
	Prefilter     *Cache_Prefilter `json:"prefilter"`
}

type Cache_Prefilter struct {
	Enabled bool   `json:"enabled"`
	Backend string `json:"backend"`
	Key     string `json:"key"`
	Bits    uint   `json:"bits"`
	Hashes  uint   `json:"hashes"`

	ExpectedEntries   uint    `json:"expected_entries"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
}

type Providers struct {
	Timeout      Duration            `json:"timeout"`
	Limit        int                 `json:"limit"`
	GooglePlaces *Providers_Google   `json:"google_places"`
	Facebook     *Providers_Facebook `json:"facebook"`
}

type Providers_Google struct {
	Enabled  bool   `json:"enabled"`
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Location string `json:"location"`
	Radius   int    `json:"radius"`
}

type Providers_Facebook struct {
	Enabled     bool   `json:"enabled"`
	BaseURL     string `json:"base_url"`
	Version     string `json:"version"`
	AccessToken string `json:"access_token"`
}

// Duration is a time.Duration read from strings such as "12s" or "168h".
type Duration struct {
	time.Duration
}

// AsDuration returns the wrapped value.
func (d Duration) AsDuration() time.Duration {
	return d.Duration
}

// Or returns d, or def when d is not positive.
func (d Duration) Or(def time.Duration) time.Duration {
	if d.Duration <= 0 {
		return def
	}
	return d.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value) * time.Second
	case string:
		if value == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("conf: invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	case nil:
		d.Duration = 0
	default:
		return fmt.Errorf("conf: invalid duration %v", v)
	}
	return nil
}
