package notify

import (
	"context"

	"go.uber.org/zap"
)

type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.logger.Info("position changed",
		zap.String("event_id", e.ID),
		zap.String("kind", string(e.Kind)),
		zap.String("user_id", e.UserID),
		zap.String("ticker", e.Ticker),
		zap.String("currency", string(e.Currency)),
	)
	return nil
}
