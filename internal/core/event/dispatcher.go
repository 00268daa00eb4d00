package event

import (
	"context"

	"go.uber.org/zap"
)

// Handler reacts to a dispatched event. Handlers must not assume they are
// the only subscriber.
type Handler func(ctx context.Context, evt Event)

// Dispatcher is a synchronous observer registry. It is owned by whoever
// constructs it and passed in explicitly, never shared as a package global.
// Handlers run in subscription order; each invocation is isolated so a
// panicking handler cannot stop the others or break the calling request.
type Dispatcher struct {
	logger   *zap.Logger
	handlers []Handler
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) Subscribe(h Handler) {
	d.handlers = append(d.handlers, h)
}

func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	for _, h := range d.handlers {
		d.invoke(ctx, h, evt)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event", evt.Name()),
				zap.Any("panic", r))
		}
	}()
	h(ctx, evt)
}
