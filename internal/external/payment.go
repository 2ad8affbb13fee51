package external

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentClient simulates a payment gateway with a fixed processing delay.
// No real gateway is contacted; charges always succeed after the delay unless
// the caller's context is cancelled first.
type PaymentClient struct {
	delay    time.Duration
	currency string
}

type PaymentConfig struct {
	Delay    time.Duration
	Currency string
}

type PaymentResult struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Delay == 0 {
		cfg.Delay = 150 * time.Millisecond
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}

	return &PaymentClient{
		delay:    cfg.Delay,
		currency: cfg.Currency,
	}
}

// Charge blocks for the configured delay and returns a successful payment
func (pc *PaymentClient) Charge(ctx context.Context, amount int64, orderID string) (*PaymentResult, error) {
	select {
	case <-time.After(pc.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &PaymentResult{
		PaymentID: uuid.New().String(),
		OrderID:   orderID,
		Status:    "COMPLETED",
		Amount:    amount,
		Currency:  pc.currency,
	}, nil
}

// Refund blocks for the configured delay and returns a successful refund
func (pc *PaymentClient) Refund(ctx context.Context, paymentID string, amount int64) (*PaymentResult, error) {
	select {
	case <-time.After(pc.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &PaymentResult{
		PaymentID: paymentID,
		Status:    "REFUNDED",
		Amount:    amount,
		Currency:  pc.currency,
	}, nil
}
