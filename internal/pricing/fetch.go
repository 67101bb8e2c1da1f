package pricing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const liteLLMPricingURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

// Fetcher produces pricing table snapshots from the LiteLLM pricing feed,
// caching the last good snapshot and falling back to the embedded table
// when the feed is unreachable. Refreshes are rate limited so repeated
// invocations never hammer the feed.
type Fetcher struct {
	URL    string
	Client *http.Client

	limiter *rate.Limiter
	ttl     time.Duration

	mu       sync.Mutex
	cached   *Table
	cachedAt time.Time
}

// NewFetcher creates a fetcher with a 10s HTTP timeout, a one-refresh-per-
// minute rate limit, and a one hour cache.
func NewFetcher() *Fetcher {
	return &Fetcher{
		URL:     liteLLMPricingURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute), 1),
		ttl:     time.Hour,
	}
}

// Snapshot returns a pricing table, preferring a fresh fetch, then the
// cached copy, then the embedded fallback. It never returns nil.
func (f *Fetcher) Snapshot(ctx context.Context) *Table {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != nil && time.Since(f.cachedAt) < f.ttl {
		return f.cached
	}
	if !f.limiter.Allow() {
		if f.cached != nil {
			return f.cached
		}
		return EmbeddedTable()
	}

	entries, err := f.fetch(ctx)
	if err != nil || len(entries) == 0 {
		if f.cached != nil {
			return f.cached
		}
		return EmbeddedTable()
	}

	f.cached = NewTable(entries)
	f.cachedAt = time.Now()
	return f.cached
}

func (f *Fetcher) fetch(ctx context.Context) ([]Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrNoPricing
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return ParseFeed(body), nil
}

// ParseFeed extracts Anthropic model pricing from a LiteLLM-format feed.
// Feed prices are per token; entries are stored per 1K tokens. The feed
// carries no version history, so entries are effective from the epoch.
func ParseFeed(body []byte) []Info {
	var entries []Info
	gjson.ParseBytes(body).ForEach(func(key, value gjson.Result) bool {
		if value.Get("litellm_provider").String() != "anthropic" {
			return true
		}
		input := value.Get("input_cost_per_token").Float()
		output := value.Get("output_cost_per_token").Float()
		if input == 0 && output == 0 {
			return true
		}
		entries = append(entries, Info{
			Model:           key.String(),
			InputCostPer1K:  input * 1000,
			OutputCostPer1K: output * 1000,
			Currency:        "USD",
			EffectiveDate:   time.Unix(0, 0).UTC(),
			IsActive:        true,
		})
		return true
	})
	return entries
}

// LoadFile reads a local pricing file holding a JSON array of entries.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Info
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return NewTable(entries), nil
}
