package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

// SnapshotSource delivers bill snapshots as they change, so every
// device at the table converges on the latest state.
type SnapshotSource interface {
	// Subscribe returns a channel that receives the current snapshot
	// immediately and a fresh one whenever the bill changes. The
	// channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, billID string) (<-chan *models.Bill, error)
}

// PollingSource implements SnapshotSource by re-reading the store on
// an interval and emitting whenever UpdatedAt moves. Good enough for a
// dinner table's worth of subscribers; a push transport can replace it
// behind the same interface.
type PollingSource struct {
	store    storage.Store
	interval time.Duration
}

// NewPollingSource creates a PollingSource with the given poll interval.
func NewPollingSource(store storage.Store, interval time.Duration) *PollingSource {
	return &PollingSource{store: store, interval: interval}
}

// Subscribe starts polling for the given bill.
func (p *PollingSource) Subscribe(ctx context.Context, billID string) (<-chan *models.Bill, error) {
	bill, err := p.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	ch := make(chan *models.Bill, 1)
	ch <- bill

	go func() {
		defer close(ch)
		lastSeen := bill.UpdatedAt

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			current, err := p.store.GetBill(ctx, billID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("Snapshot poll failed", "bill_id", billID, "error", err)
				continue
			}
			if current.UpdatedAt == lastSeen {
				continue
			}
			lastSeen = current.UpdatedAt

			select {
			case <-ctx.Done():
				return
			case ch <- current:
			}
		}
	}()

	return ch, nil
}
