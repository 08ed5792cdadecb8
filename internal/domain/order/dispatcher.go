// internal/domain/order/dispatcher.go
package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Dispatcher runs mirror deliveries according to a MirrorPolicy.
// Background deliveries are tracked so Wait can drain them on shutdown.
type Dispatcher struct {
	mirror  Mirror
	policy  MirrorPolicy
	timeout time.Duration
	backoff time.Duration
	logger  *logrus.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. timeout bounds each attempt; backoff
// is the base delay between retry attempts and doubles each time.
func NewDispatcher(mirror Mirror, policy MirrorPolicy, timeout, backoff time.Duration, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		mirror:  mirror,
		policy:  policy,
		timeout: timeout,
		backoff: backoff,
		logger:  logger,
	}
}

// Policy returns the active mirror policy
func (d *Dispatcher) Policy() MirrorPolicy {
	return d.policy
}

// Dispatch mirrors o. Under the required policy it blocks and returns the
// delivery error; otherwise it returns nil immediately.
func (d *Dispatcher) Dispatch(o *Order) error {
	payload := NewMirrorPayload(o)

	if d.policy.Mode == MirrorRequired {
		return d.deliver(payload)
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.deliver(payload)
	}()
	return nil
}

// Wait blocks until every background delivery has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(payload *MirrorPayload) error {
	attempts := d.policy.attempts()
	delay := d.backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = d.send(payload)
		if err == nil {
			d.logger.WithFields(logrus.Fields{
				"order_id": payload.ClientOrderID,
				"attempt":  attempt,
			}).Info("Order mirrored to remote store")
			return nil
		}

		d.logger.WithError(err).WithFields(logrus.Fields{
			"order_id": payload.ClientOrderID,
			"attempt":  attempt,
			"policy":   d.policy.String(),
		}).Warn("Order mirror attempt failed")

		if attempt < attempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("mirror %s after %d attempt(s): %w", payload.ClientOrderID, attempts, err)
}

// send makes one attempt. The shopper cannot cancel it; only the timeout bounds it.
func (d *Dispatcher) send(payload *MirrorPayload) error {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.mirror.Send(ctx, payload)
}
