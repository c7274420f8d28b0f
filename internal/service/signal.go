package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openrdm/rdmc-registry"
)

const ingestChannel = "rdmc:ingest"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event rdmc.IngestEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, ingestChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime forwards ingest events to output until ctx is cancelled.
func (s *SignalService) Realtime(ctx context.Context, output chan<- rdmc.IngestEvent) {

	pubsub := s.rdb.Subscribe(ctx, ingestChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var event rdmc.IngestEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Failed to decode ingest event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case output <- event:
			}
		}
	}
}
