package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

// recorder keeps the global order of collaborator calls.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.list() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeOrders struct {
	rec           *recorder
	saveErr       error
	invalidateErr error

	mu          sync.Mutex
	saved       []domain.Order
	invalidated []string
}

func (f *fakeOrders) Save(_ context.Context, order domain.Order) (domain.Order, error) {
	f.rec.add("order.save")
	if f.saveErr != nil {
		return domain.Order{}, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	order.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, order)
	return order, nil
}

func (f *fakeOrders) Invalidate(_ context.Context, orderID string) error {
	f.rec.add("order.invalidate")
	if f.invalidateErr != nil {
		return f.invalidateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, orderID)
	return nil
}

type fakePayments struct {
	rec     *recorder
	saveErr error

	mu    sync.Mutex
	saved []domain.Payment
}

func (f *fakePayments) Save(_ context.Context, payment domain.Payment) (domain.Payment, error) {
	f.rec.add("payment.save")
	if f.saveErr != nil {
		return domain.Payment{}, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	payment.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, payment)
	return payment, nil
}

func (f *fakePayments) all() []domain.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Payment(nil), f.saved...)
}

type fakeAudit struct {
	rec *recorder
	err error

	mu      sync.Mutex
	entries []sagalog.TransactionLogEntry
}

func (f *fakeAudit) Append(_ context.Context, entry *sagalog.TransactionLogEntry) error {
	f.rec.add("audit:" + string(entry.Action))
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAudit) actions() []sagalog.Action {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sagalog.Action, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type fakeGateway struct {
	rec       *recorder
	resp      domain.APIResponse
	submitErr error
	cancelErr error
	// release, when set, makes Submit block until it is closed regardless
	// of its context.
	release chan struct{}
}

func (f *fakeGateway) Submit(_ context.Context, _ domain.OrderRequest) (domain.APIResponse, error) {
	f.rec.add("gateway.submit")
	if f.release != nil {
		<-f.release
	}
	if f.submitErr != nil {
		return domain.APIResponse{}, f.submitErr
	}
	return f.resp, nil
}

func (f *fakeGateway) Cancel(_ context.Context, _ domain.OrderRequest) error {
	f.rec.add("gateway.cancel")
	return f.cancelErr
}

type fakeNotifier struct {
	rec     *recorder
	err     error
	panics  bool
	release chan struct{}

	mu     sync.Mutex
	ctxErr error
}

func (f *fakeNotifier) Notify(ctx context.Context, _ domain.OrderRequest) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.ctxErr = ctx.Err()
	f.mu.Unlock()
	f.rec.add("notifier.notify")
	if f.panics {
		panic("notifier exploded")
	}
	return f.err
}

// logCapture is a slog.Handler keeping every record it sees.
type logCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

func (c *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *logCapture) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r.Clone())
	return nil
}

func (c *logCapture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *logCapture) WithGroup(string) slog.Handler      { return c }

func (c *logCapture) count(level slog.Level, msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.records {
		if r.Level == level && r.Message == msg {
			n++
		}
	}
	return n
}

type harness struct {
	rec      *recorder
	orders   *fakeOrders
	payments *fakePayments
	audit    *fakeAudit
	gateway  *fakeGateway
	notifier *fakeNotifier
	logs     *logCapture
}

func newHarness() *harness {
	rec := &recorder{}
	return &harness{
		rec:      rec,
		orders:   &fakeOrders{rec: rec},
		payments: &fakePayments{rec: rec},
		audit:    &fakeAudit{rec: rec},
		gateway: &fakeGateway{rec: rec, resp: domain.APIResponse{
			ReferenceID: "ref-123",
			Status:      "APPROVED",
			Timestamp:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}},
		notifier: &fakeNotifier{rec: rec},
		logs:     &logCapture{},
	}
}

var variants = []string{VariantFacade, VariantTransactionScript}

func (h *harness) build(variant string, opts ...Option) *Orchestrator {
	opts = append([]Option{WithLogger(slog.New(h.logs))}, opts...)
	switch variant {
	case VariantFacade:
		return NewFacade(
			NewOrderStep(h.orders),
			NewGatewayStep(h.gateway, h.audit),
			NewPaymentStep(h.payments),
			NewNotifyStep(h.notifier, h.audit),
			opts...,
		)
	case VariantTransactionScript:
		return NewTransactionScript(Dependencies{
			Orders:   h.orders,
			Payments: h.payments,
			Audit:    h.audit,
			Gateway:  h.gateway,
			Notifier: h.notifier,
		}, opts...)
	}
	panic("unknown variant " + variant)
}

// forEachVariant runs fn once per architectural variant, each with a
// fresh harness.
func forEachVariant(t *testing.T, fn func(t *testing.T, variant string, h *harness)) {
	t.Helper()
	for _, v := range variants {
		t.Run(v, func(t *testing.T) {
			t.Parallel()
			fn(t, v, newHarness())
		})
	}
}

func drain(t *testing.T, o *Orchestrator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, o.Drain(ctx))
}

func requireKind(t *testing.T, err error, kind Kind, sentinel error) *Error {
	t.Helper()
	require.Error(t, err)
	var sagaErr *Error
	require.True(t, errors.As(err, &sagaErr), "expected *Error, got %T: %v", err, err)
	require.Equal(t, kind, sagaErr.Kind)
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, kind, KindOf(err))
	return sagaErr
}
