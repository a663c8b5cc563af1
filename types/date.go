package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonDate encodes a calendar day as "YYYY-MM-DD".
type jsonDate time.Time

func (d jsonDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(DateLayout) + `"`), nil
}

func (d *jsonDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = jsonDate(t)
	return nil
}

func optionalDate(t *time.Time) *jsonDate {
	if t == nil {
		return nil
	}
	d := jsonDate(*t)
	return &d
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	return json.Marshal(struct {
		plain
		Date jsonDate `json:"date"`
	}{plain(t), jsonDate(t.Date)})
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		Date jsonDate `json:"date"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.Date = time.Time(aux.Date)
	return nil
}

func (h HistoricalHolding) MarshalJSON() ([]byte, error) {
	type plain HistoricalHolding
	return json.Marshal(struct {
		plain
		StartDate jsonDate  `json:"startDate"`
		EndDate   *jsonDate `json:"endDate"`
	}{plain(h), jsonDate(h.StartDate), optionalDate(h.EndDate)})
}

func (r RealizedPnL) MarshalJSON() ([]byte, error) {
	type plain RealizedPnL
	return json.Marshal(struct {
		plain
		Date jsonDate `json:"date"`
	}{plain(r), jsonDate(r.Date)})
}

func (o StockOverview) MarshalJSON() ([]byte, error) {
	type plain StockOverview
	return json.Marshal(struct {
		plain
		AsOf jsonDate `json:"asOf"`
	}{plain(o), jsonDate(o.AsOf)})
}
