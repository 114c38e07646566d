package port

import "context"

// ChargeRequest initiates a hosted-checkout charge with the payment gateway.
type ChargeRequest struct {
	TxRef     string
	Amount    int64
	Currency  string
	Email     string
	ReturnURL string
}

// Charge is the gateway's answer to an initiated or verified transaction.
type Charge struct {
	TxRef       string
	CheckoutURL string
	Amount      int64
	Currency    string
	Paid        bool
}

type PaymentGateway interface {
	// InitiateCharge creates a pending transaction and returns the hosted
	// checkout URL the customer is redirected to.
	InitiateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)

	// VerifyCharge confirms a transaction's final state by reference.
	VerifyCharge(ctx context.Context, txRef string) (*Charge, error)
}

type CaptchaVerifier interface {
	// Verify checks a client captcha token; false means the challenge failed.
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Event is a lifecycle notification published after state changes.
type Event struct {
	Kind       string `json:"kind"`
	SourceKind string `json:"source_kind"`
	SourceID   string `json:"source_id"`
	UserID     string `json:"user_id,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Status     string `json:"status,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
