package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

const (
	DefaultGatewayTimeout = 30 * time.Second
	DefaultNotifyTimeout  = 30 * time.Second

	tracerName = "github.com/jcmexdev/order-fulfillment-saga/internal/coordinator"
)

// participants is what a run needs from its collaborators. Both
// architectural variants implement it; the step sequencing and the
// compensation policy live only in Orchestrator.
type participants interface {
	persistOrder(ctx context.Context, order domain.Order) error
	rollbackOrder(ctx context.Context, orderID string) error
	submit(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error)
	cancel(ctx context.Context, req domain.OrderRequest) error
	persistPayment(ctx context.Context, payment domain.Payment) error
	notify(ctx context.Context, req domain.OrderRequest) error
}

// Orchestrator runs the fulfillment saga:
// persist order, submit to the gateway, persist payment, notify.
//
// It keeps no per-order state between calls, so one Orchestrator serves
// any number of concurrent ProcessOrder calls.
type Orchestrator struct {
	variant        string
	p              participants
	gatewayTimeout time.Duration
	notifyTimeout  time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer
	now            func() time.Time

	// inflight tracks detached notifications so Drain can wait for them.
	inflight sync.WaitGroup
}

type Option func(*Orchestrator)

// WithGatewayTimeout bounds how long ProcessOrder waits for the gateway.
func WithGatewayTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.gatewayTimeout = d
		}
	}
}

// WithNotifyTimeout bounds each detached notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock overrides the time source used for order and payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func newOrchestrator(variant string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		variant:        variant,
		gatewayTimeout: DefaultGatewayTimeout,
		notifyTimeout:  DefaultNotifyTimeout,
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("variant", variant)
	return o
}

// Variant names the architectural variant behind this orchestrator.
func (o *Orchestrator) Variant() string { return o.variant }

// run carries the per-call state of one ProcessOrder invocation.
type run struct {
	req   domain.OrderRequest
	state State
}

// ProcessOrder executes the saga for req.
//
// It returns nil once the payment is persisted; the notification is still
// in flight at that point and its outcome is never reported here. Any other
// outcome is a *Error, except a request that fails validation, which is
// returned as is before anything is persisted.
func (o *Orchestrator) ProcessOrder(ctx context.Context, req domain.OrderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, span := o.tracer.Start(ctx, "saga.ProcessOrder", trace.WithAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("saga.variant", o.variant),
	))
	defer span.End()
	ctx = withAuditClock(ctx)

	r := &run{req: req, state: StateStart}

	order := domain.NewOrder(req, o.now())
	if err := o.traced(ctx, StepOrder, func(ctx context.Context) error {
		return o.p.persistOrder(ctx, order)
	}); err != nil {
		return o.fail(ctx, span, r, StepOrder, KindOrderPersist, err)
	}
	o.advance(ctx, r, StateOrderPersisted)

	var resp domain.APIResponse
	if err := o.traced(ctx, StepGateway, func(ctx context.Context) error {
		var err error
		resp, err = o.awaitGateway(ctx, req)
		return err
	}); err != nil {
		return o.fail(ctx, span, r, StepGateway, KindGatewayCall, err)
	}
	o.advance(ctx, r, StateGatewaySubmitted)

	payment := domain.NewPayment(req, resp, o.now())
	if err := o.traced(ctx, StepPayment, func(ctx context.Context) error {
		return o.p.persistPayment(ctx, payment)
	}); err != nil {
		return o.fail(ctx, span, r, StepPayment, KindPaymentPersist, err)
	}
	o.advance(ctx, r, StatePaymentPersisted)

	o.dispatchNotify(ctx, req)

	o.logger.InfoContext(ctx, "order fulfilled",
		"order_id", req.OrderID,
		"payment_status", payment.Status,
		"external_reference", payment.ExternalReference,
	)
	return nil
}

// awaitGateway submits req and waits at most gatewayTimeout for the answer.
// A gateway that ignores ctx cannot hold the caller past the deadline; its
// late answer is dropped.
func (o *Orchestrator) awaitGateway(ctx context.Context, req domain.OrderRequest) (domain.APIResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, o.gatewayTimeout)
	defer cancel()

	type result struct {
		resp domain.APIResponse
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("gateway submit panicked: %v", rec)}
			}
		}()
		resp, err := o.p.submit(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		return res.resp, res.err
	case <-ctx.Done():
		return domain.APIResponse{}, fmt.Errorf("gateway submit did not answer within %s: %w", o.gatewayTimeout, ctx.Err())
	}
}

// fail runs the compensations registered for the failing step and builds the
// outcome. Compensations run on a context that outlives the caller's so a
// cancelled request still gets rolled back.
func (o *Orchestrator) fail(ctx context.Context, span trace.Span, r *run, step Step, kind Kind, cause error) error {
	sagaErr := &Error{Kind: kind, Step: step, OrderID: r.req.OrderID, Err: cause}

	o.logger.ErrorContext(ctx, "saga step failed",
		"order_id", r.req.OrderID,
		"step", step,
		"error", cause,
	)

	if steps := compensations[step]; len(steps) > 0 {
		o.advance(ctx, r, StateCompensating)
		compCtx := context.WithoutCancel(ctx)
		for _, c := range steps {
			if err := o.compensate(compCtx, c, r.req); err != nil {
				o.logger.ErrorContext(ctx, "CRITICAL: failed to compensate step",
					"order_id", r.req.OrderID,
					"step", c,
					"error", err,
				)
				sagaErr.Compensation = append(sagaErr.Compensation, fmt.Errorf("compensate %s: %w", c, err))
			}
		}
	}
	o.advance(ctx, r, StateFailed)

	span.RecordError(sagaErr)
	span.SetStatus(codes.Error, string(kind))
	return sagaErr
}

func (o *Orchestrator) compensate(ctx context.Context, step Step, req domain.OrderRequest) error {
	o.logger.InfoContext(ctx, "compensating step", "order_id", req.OrderID, "step", step)
	return o.traced(ctx, Step("compensate_"+string(step)), func(ctx context.Context) error {
		switch step {
		case StepOrder:
			return o.p.rollbackOrder(ctx, req.OrderID)
		case StepGateway:
			return o.p.cancel(ctx, req)
		default:
			return nil
		}
	})
}

// dispatchNotify fires the notification and returns immediately. Failures
// are logged at error level and discarded.
func (o *Orchestrator) dispatchNotify(ctx context.Context, req domain.OrderRequest) {
	ctx = context.WithoutCancel(ctx)

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()

		ctx, cancel := context.WithTimeout(ctx, o.notifyTimeout)
		defer cancel()

		err := o.traced(ctx, StepNotify, func(ctx context.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("notify panicked: %v", rec)
				}
			}()
			return o.p.notify(ctx, req)
		})
		if err != nil {
			o.logger.ErrorContext(ctx, "notification failed",
				"order_id", req.OrderID,
				"error", &Error{Kind: KindNotification, Step: StepNotify, OrderID: req.OrderID, Err: err},
			)
		}
	}()
}

// Drain blocks until every detached notification has finished or ctx is
// done. Call it after the last ProcessOrder has returned.
func (o *Orchestrator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notifications: %w", ctx.Err())
	}
}

func (o *Orchestrator) advance(ctx context.Context, r *run, to State) {
	if !CanTransition(r.state, to) {
		o.logger.ErrorContext(ctx, "saga state machine violated",
			"order_id", r.req.OrderID,
			"error", illegalTransitionError{from: r.state, to: to},
		)
	}
	o.logger.DebugContext(ctx, "saga transition", "order_id", r.req.OrderID, "from", r.state, "to", to)
	r.state = to
}

func (o *Orchestrator) traced(ctx context.Context, step Step, fn func(ctx context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "saga."+string(step))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
