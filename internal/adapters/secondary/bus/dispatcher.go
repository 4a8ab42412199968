package bus

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/lorrc/incident-desk/internal/core/ports"
	"github.com/lorrc/incident-desk/internal/infrastructure/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// delivery is one message queued for a worker. done runs after the handler
// returns, panics included.
type delivery struct {
	msg  ports.Message
	done func()
}

// dispatcher runs one subscription's handler on a fixed set of workers.
// Deliveries with the same routing key always land on the same worker, so
// they are handled in arrival order.
type dispatcher struct {
	topic   string
	group   string
	handler ports.MessageHandler
	logger  *slog.Logger
	workers []*worker
	wg      sync.WaitGroup
}

func newDispatcher(topic, group string, workers int, handler ports.MessageHandler, logger *slog.Logger) *dispatcher {
	if workers <= 0 {
		workers = 1
	}

	d := &dispatcher{
		topic:   topic,
		group:   group,
		handler: handler,
		logger:  logger.With("topic", topic, "group", group),
		workers: make([]*worker, workers),
	}

	for i := range d.workers {
		w := newWorker()
		d.workers[i] = w
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				item, ok := w.next()
				if !ok {
					return
				}
				d.handle(item)
			}
		}()
	}
	return d
}

// dispatch queues the message. It never blocks on the handler.
func (d *dispatcher) dispatch(routingKey string, msg ports.Message, done func()) {
	d.workers[workerIndex(routingKey, len(d.workers))].push(delivery{msg: msg, done: done})
}

// close stops accepting work and waits until every queued delivery is handled.
func (d *dispatcher) close() {
	for _, w := range d.workers {
		w.close()
	}
	d.wg.Wait()
}

func (d *dispatcher) handle(item delivery) {
	if item.done != nil {
		defer item.done()
	}

	msg := item.msg
	logger := d.logger.With("key", msg.Key)

	ctx := extractTraceContext(context.Background(), msg.Headers)
	ctx, span := otel.Tracer("bus").Start(ctx, "bus.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination", msg.Topic),
			attribute.String("messaging.consumer.group", d.group),
			attribute.String("messaging.message.key", msg.Key),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			span.SetStatus(codes.Error, "handler panic")
			logging.LogPanic(logger, r)
		}
	}()

	if err := d.handler(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "message handler failed, dropping message", "error", err)
	}
}

func workerIndex(key string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

// worker owns an unbounded FIFO queue drained by a single goroutine.
type worker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []delivery
	closed bool
}

func newWorker() *worker {
	w := &worker{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worker) push(item delivery) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		if item.done != nil {
			item.done()
		}
		return
	}
	w.queue = append(w.queue, item)
	w.cond.Signal()
}

// next blocks until work is available. It returns false once the worker is
// closed and its queue is empty.
func (w *worker) next() (delivery, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.queue) == 0 && !w.closed {
		w.cond.Wait()
	}
	if len(w.queue) == 0 {
		return delivery{}, false
	}

	item := w.queue[0]
	w.queue[0] = delivery{}
	w.queue = w.queue[1:]
	return item, true
}

func (w *worker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.cond.Broadcast()
}
