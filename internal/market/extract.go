package market

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"portfolio/types"
)

// extractLatestPrice reads price and date out of an arbitrary EOD payload, e.g.
// marketstack's {"data":[{"close":189.3,"date":"2024-05-01T00:00:00+0000"}]}.
func extractLatestPrice(body []byte, ticker, pricePath, datePath string) (types.LatestPrice, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return types.LatestPrice{}, types.Systemf(err, "Not able to fetch the data from market svc")
	}

	jval, err := lookup(pricePath, jobj)
	if err != nil {
		return types.LatestPrice{}, types.Systemf(err, "price of %s", ticker)
	}
	price, err := toDecimal(jval)
	if err != nil {
		return types.LatestPrice{}, types.Systemf(err, "price of %s at %q", ticker, pricePath)
	}

	date := types.DateOf(time.Now())
	if datePath != "" {
		jval, err := lookup(datePath, jobj)
		if err != nil {
			return types.LatestPrice{}, types.Systemf(err, "date of %s", ticker)
		}
		s, ok := jval.(string)
		if !ok || len(s) < len(types.DateLayout) {
			return types.LatestPrice{}, types.Systemf(nil, "date of %s at %q is not a date: %v", ticker, datePath, jval)
		}
		// accept both plain dates and timestamps
		if date, err = time.Parse(types.DateLayout, s[:len(types.DateLayout)]); err != nil {
			return types.LatestPrice{}, types.Systemf(err, "date of %s", ticker)
		}
	}
	return types.LatestPrice{Ticker: ticker, LatestDate: date, Price: price}, nil
}

func lookup(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	// filters return a list even for a single match
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("no match for %q", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		return decimal.NewFromFloat(x), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
	}
}
