package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/order-fulfillment-saga/internal/coordinator/sagalog"
	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

// auditor writes one transaction log entry ahead of each remote call.
// A failed append is logged and never stops the call it describes.
type auditor struct {
	log    AuditLog
	logger *slog.Logger
}

func (a *auditor) record(ctx context.Context, req domain.OrderRequest, action sagalog.Action) {
	if a.log == nil {
		return
	}
	details := fmt.Sprintf("amount=%s customer=%s", req.Amount.String(), req.CustomerEmail)
	entry := sagalog.NewEntry(ctx, req.OrderID, action, details)
	if clock, ok := ctx.Value(auditClockKey{}).(*auditClock); ok {
		entry.CreatedAt = clock.stamp(entry.CreatedAt)
	}

	if err := a.log.Append(context.WithoutCancel(ctx), entry); err != nil {
		a.logger.ErrorContext(ctx, "failed to append transaction log",
			"order_id", req.OrderID,
			"action", action,
			"error", err,
		)
		return
	}
	a.logger.InfoContext(ctx, "transaction logged", "order_id", req.OrderID, "action", action)
}

type auditClockKey struct{}

// auditClock keeps the audit timestamps of one run non-decreasing, even if
// the wall clock steps backwards between entries.
type auditClock struct {
	mu   sync.Mutex
	last time.Time
}

func withAuditClock(ctx context.Context) context.Context {
	return context.WithValue(ctx, auditClockKey{}, &auditClock{})
}

func (c *auditClock) stamp(t time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
