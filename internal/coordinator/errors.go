package coordinator

import (
	"errors"
	"fmt"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

// Kind classifies why a fulfillment run did not succeed.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindOrderPersist   Kind = "order_persist"
	KindGatewayCall    Kind = "gateway_call"
	KindPaymentPersist Kind = "payment_persist"
	// KindNotification is only ever logged. A notify failure never reaches
	// the caller of ProcessOrder.
	KindNotification Kind = "notification"
)

var (
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrOrderPersist   = errors.New("order persistence failed")
	ErrGatewayCall    = errors.New("payment gateway call failed")
	ErrPaymentPersist = errors.New("payment persistence failed")
	ErrNotification   = errors.New("notification failed")
)

var kindSentinels = map[Kind]error{
	KindValidation:     ErrInvalidRequest,
	KindOrderPersist:   ErrOrderPersist,
	KindGatewayCall:    ErrGatewayCall,
	KindPaymentPersist: ErrPaymentPersist,
	KindNotification:   ErrNotification,
}

// Error is the typed outcome of a failed run.
//
// Err is the proximate cause and is what Unwrap returns. Compensation holds
// the errors of compensating actions that themselves failed; they are kept
// for diagnostics and never change Kind.
type Error struct {
	Kind         Kind
	Step         Step
	OrderID      string
	Err          error
	Compensation []error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: order %s: %v", kindSentinels[e.Kind], e.OrderID, e.Err)
	if n := len(e.Compensation); n > 0 {
		msg += fmt.Sprintf(" (%d compensation(s) failed)", n)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind, so callers can
// write errors.Is(err, ErrGatewayCall).
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf returns the Kind carried by err, or "" when err is nil or did not
// come from the orchestrator.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var sagaErr *Error
	if errors.As(err, &sagaErr) {
		return sagaErr.Kind
	}
	if errors.Is(err, ErrInvalidRequest) {
		return KindValidation
	}
	return ""
}
