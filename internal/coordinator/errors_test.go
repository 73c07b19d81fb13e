package coordinator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/order-fulfillment-saga/internal/order-service/domain"
)

func TestErrorMatchesOnlyItsKind(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := fmt.Errorf("handler: %w", &Error{Kind: KindGatewayCall, Step: StepGateway, OrderID: "ORD-001", Err: cause})

	assert.ErrorIs(t, err, ErrGatewayCall)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPaymentPersist)
	assert.NotErrorIs(t, err, ErrOrderPersist)
	assert.Equal(t, KindGatewayCall, KindOf(err))
	assert.Contains(t, err.Error(), "ORD-001")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrorMessageCountsFailedCompensations(t *testing.T) {
	t.Parallel()

	err := &Error{
		Kind:         KindPaymentPersist,
		OrderID:      "ORD-001",
		Err:          errors.New("disk full"),
		Compensation: []error{errors.New("cancel refused")},
	}
	assert.Contains(t, err.Error(), "1 compensation(s) failed")
	assert.NotErrorIs(t, err, err.Compensation[0])
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))

	validation := domain.OrderRequest{}.Validate()
	require.Error(t, validation)
	assert.Equal(t, KindValidation, KindOf(validation))
}
