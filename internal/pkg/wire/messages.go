// Package wire defines the gRPC contracts between the order service and the
// payment gateway and notifier simulators.
//
// Messages travel as google.protobuf.Struct so no generated code is needed;
// the typed Go messages below convert to and from that representation.
package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// OrderMessage is the request body of Submit, Cancel and Notify.
type OrderMessage struct {
	OrderID       string
	Amount        string
	CustomerEmail string
}

// PaymentResponse is the reply to Submit.
type PaymentResponse struct {
	ReferenceID string
	Status      string
	Timestamp   time.Time
}

const (
	fieldOrderID       = "orderId"
	fieldAmount        = "amount"
	fieldCustomerEmail = "customerEmail"
	fieldReferenceID   = "referenceId"
	fieldStatus        = "status"
	fieldTimestamp     = "timestamp"
)

func (m *OrderMessage) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldOrderID:       m.OrderID,
		fieldAmount:        m.Amount,
		fieldCustomerEmail: m.CustomerEmail,
	})
}

func orderMessageFromStruct(s *structpb.Struct) (*OrderMessage, error) {
	f := s.GetFields()
	msg := &OrderMessage{
		OrderID:       f[fieldOrderID].GetStringValue(),
		Amount:        f[fieldAmount].GetStringValue(),
		CustomerEmail: f[fieldCustomerEmail].GetStringValue(),
	}
	if msg.OrderID == "" {
		return nil, fmt.Errorf("wire: %s is required", fieldOrderID)
	}
	return msg, nil
}

func (m *PaymentResponse) toStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldReferenceID: m.ReferenceID,
		fieldStatus:      m.Status,
		fieldTimestamp:   m.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func paymentResponseFromStruct(s *structpb.Struct) (*PaymentResponse, error) {
	f := s.GetFields()
	resp := &PaymentResponse{
		ReferenceID: f[fieldReferenceID].GetStringValue(),
		Status:      f[fieldStatus].GetStringValue(),
	}
	if raw := f[fieldTimestamp].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("wire: parse %s %q: %w", fieldTimestamp, raw, err)
		}
		resp.Timestamp = ts
	}
	return resp, nil
}
