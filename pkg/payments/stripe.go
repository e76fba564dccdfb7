// Package payments talks to Stripe through stripe-go: payout accounts, payment intents and webhooks.
package payments

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

// Client covers connected accounts and payment intents
type Client struct {
	api *client.API
	log *logger.Logger
}

// NewClient creates a client; timeout bounds every gateway call. baseURL overrides the API host.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *logger.Logger) *Client {
	httpClient := &http.Client{Timeout: timeout}
	backend := func(t stripe.SupportedBackend, url string) stripe.Backend {
		cfg := &stripe.BackendConfig{
			HTTPClient:        httpClient,
			LeveledLogger:     log.Sugar(),
			MaxNetworkRetries: stripe.Int64(0),
		}
		if url != "" {
			cfg.URL = stripe.String(strings.TrimRight(url, "/"))
		}
		return stripe.GetBackendWithConfig(t, cfg)
	}

	return &Client{
		api: client.New(apiKey, &stripe.Backends{
			API:     backend(stripe.APIBackend, baseURL),
			Connect: backend(stripe.ConnectBackend, baseURL),
			Uploads: backend(stripe.UploadsBackend, ""),
		}),
		log: log,
	}
}

// PaymentIntentParams describes one charge routed to a seller account
type PaymentIntentParams struct {
	OrderID         string
	AmountMinor     int64
	FeeMinor        int64
	Currency        string
	SellerAccountID string
	BuyerEmail      string
}

// PaymentIntentResult is what a mobile or web client needs to complete the payment
type PaymentIntentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	CustomerID      string `json:"customer_id"`
	EphemeralKey    string `json:"ephemeral_key"`
}

// CreateAccount opens an express connected account and returns its id
func (c *Client) CreateAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	account, err := c.api.Accounts.New(params)
	if err != nil {
		return "", gatewayError("account creation", err)
	}
	return account.ID, nil
}

// PerformPaymentIntent creates a customer, an ephemeral key and a payment intent for the order
func (c *Client) PerformPaymentIntent(ctx context.Context, p PaymentIntentParams) (*PaymentIntentResult, error) {
	if p.AmountMinor <= 0 {
		return nil, errors.NewValidation("payment amount must be positive", nil)
	}

	customerParams := &stripe.CustomerParams{Email: stripe.String(p.BuyerEmail)}
	customerParams.Context = ctx
	customer, err := c.api.Customers.New(customerParams)
	if err != nil {
		return nil, gatewayError("customer creation", err)
	}

	keyParams := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customer.ID),
		StripeVersion: stripe.String(stripe.APIVersion),
	}
	keyParams.Context = ctx
	key, err := c.api.EphemeralKeys.New(keyParams)
	if err != nil {
		return nil, gatewayError("ephemeral key creation", err)
	}

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		Customer: stripe.String(customer.ID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	intentParams.Context = ctx
	intentParams.AddMetadata("order_id", p.OrderID)
	if p.SellerAccountID != "" {
		intentParams.TransferData = &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(p.SellerAccountID),
		}
		if p.FeeMinor > 0 {
			intentParams.ApplicationFeeAmount = stripe.Int64(p.FeeMinor)
		}
	}

	intent, err := c.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, gatewayError("payment intent creation", err)
	}

	c.log.WithContext(ctx).Info("payment intent created",
		zap.String("order_id", p.OrderID),
		zap.String("payment_intent_id", intent.ID),
		zap.Int64("amount_minor", p.AmountMinor),
	)

	return &PaymentIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		CustomerID:      customer.ID,
		EphemeralKey:    key.Secret,
	}, nil
}

// gatewayError maps every stripe failure to UPSTREAM_ERROR
func gatewayError(op string, err error) error {
	var stripeErr *stripe.Error
	if stderrors.As(err, &stripeErr) {
		return errors.NewUpstream(
			fmt.Sprintf("payment gateway rejected %s", op),
			fmt.Errorf("status %d, %s: %s", stripeErr.HTTPStatusCode, stripeErr.Type, stripeErr.Msg),
		)
	}
	return errors.NewUpstream("payment gateway unreachable", err)
}
