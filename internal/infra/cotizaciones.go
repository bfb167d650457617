package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// CotizacionesResponse is returned by the exchange-rate provider. Tasas maps
// a currency code to its value in Base, matching tasa_vs_base semantics.
type CotizacionesResponse struct {
	Base  string                     `json:"base"`
	Fecha time.Time                  `json:"fecha"`
	Tasas map[string]decimal.Decimal `json:"tasas"`
}

// CotizacionesClient fetches exchange rates over HTTP behind a circuit breaker.
type CotizacionesClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewCotizacionesClient(baseURL string) *CotizacionesClient {
	return &CotizacionesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cb:         NewCircuitBreaker("cotizaciones"),
	}
}

// Obtener returns the provider's current rates quoted against base.
// While the breaker is open it fails fast with gobreaker.ErrOpenState.
func (c *CotizacionesClient) Obtener(ctx context.Context, base string) (*CotizacionesResponse, error) {
	out, err := c.cb.Execute(func() (interface{}, error) {
		return c.fetch(ctx, base)
	})
	if err != nil {
		return nil, err
	}
	return out.(*CotizacionesResponse), nil
}

// Estado reports the breaker state ("closed" | "half-open" | "open").
func (c *CotizacionesClient) Estado() string {
	return c.cb.State().String()
}

func (c *CotizacionesClient) fetch(ctx context.Context, base string) (*CotizacionesResponse, error) {
	endpoint := c.baseURL + "/tasas?base=" + url.QueryEscape(base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cotizaciones: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cotizaciones: provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cotizaciones: provider returned %d", resp.StatusCode)
	}

	var result CotizacionesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cotizaciones: decode response: %w", err)
	}
	if result.Base != "" && result.Base != base {
		return nil, fmt.Errorf("cotizaciones: provider quoted %s, asked %s", result.Base, base)
	}
	return &result, nil
}
