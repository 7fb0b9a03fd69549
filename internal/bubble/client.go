// Package bubble is the retrieval side of the audit service: a thin client
// for the upstream Bubble Data API that the order-management product runs
// on. It fetches one record per call and decodes the API's response
// envelope; the engine consumes the decoded records and never touches the
// network itself.
package bubble

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gatehouse/orderaudit/internal/obs"
	"github.com/gatehouse/orderaudit/internal/resilience"
)

// ErrNotFound is returned when the upstream store has no record for the
// requested id. Callers fetching legacy order-fee records treat it as "the
// record was deleted"; every other caller propagates it.
var ErrNotFound = errors.New("bubble: record not found")

// Thing type names on the upstream data API.
const (
	ThingOrder         = "GP_Order"
	ThingAddOn         = "GP_AddOn"
	ThingPromotion     = "GP_Promotion"
	ThingEvent         = "event"
	ThingEventDetail   = "GP_EventDetail"
	ThingTicketType    = "GP_TicketType"
	ThingCustomFeeType = "GP_CustomFeeType"
	ThingOrderFee      = "GP_OrderFee"
)

// cacheableThings are immutable reference records worth a read-through
// cache; orders and their lines change and are always fetched fresh.
var cacheableThings = map[string]bool{
	ThingTicketType:    true,
	ThingCustomFeeType: true,
	ThingEventDetail:   true,
}

// Client fetches records from the Bubble Data API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    resilience.HTTPClient
	Cache   *Cache
}

// Fetch retrieves one record by thing type and id and decodes it into out.
// Immutable reference records are served from the cache when one is
// configured; cache failures degrade to a plain fetch.
func (c *Client) Fetch(ctx context.Context, thing, id string, out any) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("bubble: empty id for %s", thing)
	}

	cacheKey := ""
	if cacheableThings[thing] {
		cacheKey = fmt.Sprintf("bubble:%s:%s", thing, id)
		hit, err := c.Cache.GetJSON(ctx, cacheKey, out)
		if err == nil && hit {
			c.observe(thing, "cache_hit", 0)
			return nil
		}
	}

	start := time.Now()
	raw, err := c.get(ctx, thing, id)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrNotFound) {
			result = "not_found"
		}
		c.observe(thing, result, time.Since(start))
		return err
	}
	c.observe(thing, "ok", time.Since(start))

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("bubble: decode %s %s: %w", thing, id, err)
	}
	if cacheKey != "" {
		// best effort; a cold cache never fails a fetch
		_ = c.Cache.SetJSON(ctx, cacheKey, json.RawMessage(raw))
	}
	return nil
}

func (c *Client) get(ctx context.Context, thing, id string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(thing), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bubble: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bubble: fetch %s %s: %w", thing, id, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, thing, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("bubble: fetch %s %s: unexpected status %s", thing, id, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("bubble: read %s %s: %w", thing, id, err)
	}
	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("bubble: decode envelope for %s %s: %w", thing, id, err)
	}
	if len(envelope.Response) == 0 {
		return nil, fmt.Errorf("bubble: empty response envelope for %s %s", thing, id)
	}
	return envelope.Response, nil
}

func (c *Client) observe(thing, result string, elapsed time.Duration) {
	if obs.UpstreamFetchTotal != nil {
		obs.UpstreamFetchTotal.WithLabelValues(thing, result).Inc()
	}
	if obs.UpstreamFetchLatency != nil && result == "ok" {
		obs.UpstreamFetchLatency.WithLabelValues(thing).Observe(obs.DurationMillis(elapsed))
	}
}
