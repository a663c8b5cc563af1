package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"portfolio/types"
)

const (
	tickerDataPath  = "v1/ticker"
	latestPricePath = "v1/eod/latest-price"
)

// Provider serves market reference data and end-of-day prices.
type Provider interface {
	LatestPrice(ctx context.Context, ticker string) (types.LatestPrice, error)
	TickerData(ctx context.Context, ticker string) (types.TickerData, error)
}

type ClientOptions struct {
	Timeout time.Duration
	// PricePath and DatePath are JSONPath expressions applied to the latest-price
	// payload when the upstream does not speak the market service format.
	PricePath  string
	DatePath   string
	HTTPClient *http.Client
}

// Client talks to the market service over HTTP.
type Client struct {
	baseURL   string
	http      *http.Client
	pricePath string
	datePath  string
	logger    *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger, opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      hc,
		pricePath: opts.PricePath,
		datePath:  opts.DatePath,
		logger:    logger,
	}
}

type latestPriceBody struct {
	Ticker     string          `json:"ticker"`
	LatestDate string          `json:"latestDate"`
	Price      decimal.Decimal `json:"price"`
}

func (c *Client) LatestPrice(ctx context.Context, ticker string) (types.LatestPrice, error) {
	body, err := c.get(ctx, latestPricePath, ticker)
	if err != nil {
		return types.LatestPrice{}, err
	}
	if c.pricePath != "" {
		return extractLatestPrice(body, ticker, c.pricePath, c.datePath)
	}
	var wire latestPriceBody
	if err := json.Unmarshal(body, &wire); err != nil {
		return types.LatestPrice{}, types.Systemf(err, "Not able to fetch the data from market svc")
	}
	date, err := time.Parse(types.DateLayout, wire.LatestDate)
	if err != nil {
		return types.LatestPrice{}, types.Systemf(err, "Invalid latest price date %q for %s", wire.LatestDate, ticker)
	}
	if wire.Ticker == "" {
		wire.Ticker = ticker
	}
	return types.LatestPrice{Ticker: wire.Ticker, LatestDate: date, Price: wire.Price}, nil
}

func (c *Client) TickerData(ctx context.Context, ticker string) (types.TickerData, error) {
	body, err := c.get(ctx, tickerDataPath, ticker)
	if err != nil {
		return types.TickerData{}, err
	}
	var data types.TickerData
	if err := json.Unmarshal(body, &data); err != nil {
		return types.TickerData{}, types.Systemf(err, "Not able to fetch the data from market svc")
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path, ticker string) ([]byte, error) {
	addr := fmt.Sprintf("%s/%s/%s", c.baseURL, path, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, types.Systemf(err, "build market request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, types.Systemf(err, "Market service api call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, types.Systemf(err, "read market response")
	}
	c.logger.Debug("market request",
		zap.String("url", addr),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, types.Systemf(nil, "Market service api call failed with error %d, Details: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
