package notify

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sandeepkv93/checkin/internal/model"
)

// DeliveryHandler receives reminders that came due while the dashboard is
// running.
type DeliveryHandler interface {
	HandleDelivered(ctx context.Context, n model.Notification) bool
}

// Relay drains due reminders, shows each on the desktop and hands it to the
// engine so the in-app prompt can open.
type Relay struct {
	source  <-chan model.Notification
	handler DeliveryHandler
	desktop Desktop
	log     *zap.Logger

	delivered atomic.Uint64
	alarms    atomic.Uint64
}

func NewRelay(source <-chan model.Notification, handler DeliveryHandler, desktop Desktop, log *zap.Logger) *Relay {
	if desktop == nil {
		desktop = NoopDesktop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{source: source, handler: handler, desktop: desktop, log: log}
}

// Run blocks until ctx is done or the source is closed.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-r.source:
			if !ok {
				return
			}
			r.deliver(ctx, n)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, n model.Notification) {
	r.delivered.Add(1)
	if err := r.desktop.Send(n); err != nil {
		r.log.Warn("desktop notification failed",
			zap.String("session_id", n.Event.SessionID),
			zap.String("reminder_id", n.Event.ID),
			zap.Error(err),
		)
	}
	if r.handler != nil && r.handler.HandleDelivered(ctx, n) {
		r.alarms.Add(1)
	}
}

func (r *Relay) Delivered() uint64 { return r.delivered.Load() }

// Alarms counts deliveries that raised the in-app prompt.
func (r *Relay) Alarms() uint64 { return r.alarms.Load() }
