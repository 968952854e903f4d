package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// razorpayOrderRequest is the body of POST /orders
type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// razorpayOrder is an order entity as returned by the Orders API
type razorpayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// razorpayErrorResponse is the error envelope of the REST API
type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Field       string `json:"field,omitempty"`
	} `json:"error"`
}

// razorpayWebhook is a webhook delivery envelope
type razorpayWebhook struct {
	Entity    string          `json:"entity"`
	AccountID string          `json:"account_id"`
	Event     string          `json:"event"`
	Contains  []string        `json:"contains"`
	Payload   razorpayPayload `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

type razorpayPayload struct {
	Payment *struct {
		Entity razorpayPayment `json:"entity"`
	} `json:"payment,omitempty"`
	Order *struct {
		Entity razorpayOrder `json:"entity"`
	} `json:"order,omitempty"`
}

// razorpayPayment is a payment entity; amount is in minor units
type razorpayPayment struct {
	ID        string        `json:"id"`
	Entity    string        `json:"entity"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Status    string        `json:"status"`
	OrderID   string        `json:"order_id"`
	Method    string        `json:"method"`
	Email     string        `json:"email"`
	Notes     razorpayNotes `json:"notes"`
	CreatedAt int64         `json:"created_at"`
	ErrorCode string        `json:"error_code,omitempty"`
}

// razorpayNotes decodes the notes field, which the API sends as an empty
// array when no notes are set.
type razorpayNotes map[string]string

func (n *razorpayNotes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		*n = nil
		return nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	out := make(razorpayNotes, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	*n = out
	return nil
}
