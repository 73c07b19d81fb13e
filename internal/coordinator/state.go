package coordinator

import "fmt"

// Step names one stage of the fulfillment saga.
type Step string

const (
	StepOrder   Step = "persist_order"
	StepGateway Step = "gateway_submit"
	StepPayment Step = "persist_payment"
	StepNotify  Step = "notify"
)

// State is where a single run is in the saga.
type State string

const (
	StateStart            State = "START"
	StateOrderPersisted   State = "ORDER_PERSISTED"
	StateGatewaySubmitted State = "GATEWAY_SUBMITTED"
	StatePaymentPersisted State = "PAYMENT_PERSISTED"
	StateCompensating     State = "COMPENSATING"
	StateFailed           State = "FAILED"
)

var transitions = map[State][]State{
	StateStart:            {StateOrderPersisted, StateFailed},
	StateOrderPersisted:   {StateGatewaySubmitted, StateCompensating},
	StateGatewaySubmitted: {StatePaymentPersisted, StateCompensating},
	StateCompensating:     {StateFailed},
}

// compensations lists, per failing step, the earlier steps to undo and the
// order to undo them in. Steps absent from the table need no compensation.
var compensations = map[Step][]Step{
	StepGateway: {StepOrder},
	StepPayment: {StepGateway, StepOrder},
}

// CompensationsFor returns the compensating steps run when step fails.
func CompensationsFor(step Step) []Step {
	return append([]Step(nil), compensations[step]...)
}

// CanTransition reports whether a run may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

type illegalTransitionError struct {
	from, to State
}

func (e illegalTransitionError) Error() string {
	return fmt.Sprintf("illegal saga transition %s -> %s", e.from, e.to)
}
