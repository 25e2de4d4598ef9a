package notify

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusFailed   Status = "failed"
)

// Delivery tracks one asynchronous send.
type Delivery struct {
	ID        string
	Recipient string
	CreatedAt time.Time

	done chan struct{}

	mu          sync.Mutex
	status      Status
	err         error
	completedAt time.Time
}

func newDelivery(id, recipient string, now time.Time) *Delivery {
	return &Delivery{
		ID:        id,
		Recipient: recipient,
		CreatedAt: now,
		done:      make(chan struct{}),
		status:    StatusPending,
	}
}

// Wait blocks until the transport answered or ctx is done. Giving up on the
// wait does not cancel the send.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return d.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the delivery left the pending state.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

func (d *Delivery) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.status
}

// Err is the send failure, nil while pending or after acceptance.
func (d *Delivery) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.err
}

func (d *Delivery) CompletedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.completedAt
}

func (d *Delivery) complete(err error, now time.Time) {
	d.mu.Lock()
	d.err = err
	d.completedAt = now

	d.status = StatusAccepted
	if err != nil {
		d.status = StatusFailed
	}
	d.mu.Unlock()

	close(d.done)
}
