package notify

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"portfolio/types"
)

type Kind string

const (
	KindTransactionAdded   Kind = "TRANSACTION_ADDED"
	KindTransactionDeleted Kind = "TRANSACTION_DELETED"
	KindPositionRebuilt    Kind = "POSITION_REBUILT"
)

// Event tells downstream consumers that the derived state of a position changed.
type Event struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"kind"`
	UserID   string         `json:"userId"`
	Ticker   string         `json:"ticker"`
	Currency types.Currency `json:"currency"`
	At       time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewEvent stamps a ULID and the current time on an event for key.
func NewEvent(kind Kind, key types.PositionKey) Event {
	now := time.Now().UTC()
	mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), mono)
	mu.Unlock()
	return Event{
		ID:       id.String(),
		Kind:     kind,
		UserID:   key.UserID,
		Ticker:   key.Ticker,
		Currency: key.Currency,
		At:       now,
	}
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
