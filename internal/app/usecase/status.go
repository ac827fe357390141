package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/supchaser/pdftoxl/internal/app/models"
)

// StatusTracker holds the single aggregate status slot. The batch driver is
// its only writer; readers get copies. Subscribers only ever see the latest
// value, older ones are dropped.
type StatusTracker struct {
	mu      sync.Mutex
	current models.BatchStatus
	subs    map[int]chan models.BatchStatus
	nextSub int
	now     func() time.Time
}

func CreateStatusTracker() *StatusTracker {
	t := &StatusTracker{
		subs: make(map[int]chan models.BatchStatus),
		now:  time.Now,
	}
	t.current = models.BatchStatus{Kind: models.StatusIdle, UpdatedAt: t.now()}
	return t
}

// Set replaces the slot as a whole and returns the stored value.
func (t *StatusTracker) Set(status models.BatchStatus) models.BatchStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	status.Seq = t.current.Seq + 1
	status.UpdatedAt = t.now()
	t.current = status

	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		ch <- status
	}

	return status
}

func (t *StatusTracker) Snapshot() models.BatchStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.current
}

// Subscribe delivers the current value right away and every later change
// until ctx is done, then closes the channel.
func (t *StatusTracker) Subscribe(ctx context.Context) <-chan models.BatchStatus {
	ch := make(chan models.BatchStatus, 1)

	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	ch <- t.current
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		delete(t.subs, id)
		close(ch)
		t.mu.Unlock()
	}()

	return ch
}
