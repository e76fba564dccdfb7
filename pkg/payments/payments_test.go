package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"go-market/pkg/errors"
	"go-market/pkg/logger"
)

const webhookSecret = "whsec_test"

var succeeded = []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","amount":21000,"currency":"usd","metadata":{"order_id":"ord-1"}}}}`)

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

func TestConstructEvent_Valid(t *testing.T) {
	header := sign(succeeded, webhookSecret, time.Now())

	event, err := ConstructEvent(succeeded, header, webhookSecret)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentIntentSucceeded, event.Type)

	intent, err := PaymentIntent(event)
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "ord-1", intent.Metadata["order_id"])
	assert.Equal(t, int64(21000), intent.Amount)
}

func TestConstructEvent_Rejects(t *testing.T) {
	now := time.Now()
	good := sign(succeeded, webhookSecret, now)

	cases := map[string]struct {
		payload []byte
		header  string
		secret  string
	}{
		"tampered body":  {[]byte(`{"id":"evt_2"}`), good, webhookSecret},
		"wrong secret":   {succeeded, good, "whsec_other"},
		"stale":          {succeeded, sign(succeeded, webhookSecret, now.Add(-10*time.Minute)), webhookSecret},
		"no signature":   {succeeded, "t=1700000000", webhookSecret},
		"garbage header": {succeeded, "nonsense", webhookSecret},
		"empty header":   {succeeded, "", webhookSecret},
		"no secret":      {succeeded, good, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ConstructEvent(tc.payload, tc.header, tc.secret)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.CodeUnauthorized))
		})
	}
}

func TestConstructEvent_MalformedBody(t *testing.T) {
	payload := []byte(`not json`)

	_, err := ConstructEvent(payload, sign(payload, webhookSecret, time.Now()), webhookSecret)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestPerformPaymentIntent(t *testing.T) {
	var intentForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/customers":
			assert.Equal(t, "buyer@example.com", r.PostForm.Get("email"))
			_, _ = w.Write([]byte(`{"id":"cus_1","object":"customer"}`))
		case "/v1/ephemeral_keys":
			assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
			assert.NotEmpty(t, r.Header.Get("Stripe-Version"))
			_, _ = w.Write([]byte(`{"id":"ephkey_1","object":"ephemeral_key","secret":"ek_1"}`))
		case "/v1/payment_intents":
			intentForm = map[string]string{}
			for k := range r.PostForm {
				intentForm[k] = r.PostForm.Get(k)
			}
			_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", time.Second, logger.NewNop())
	res, err := client.PerformPaymentIntent(context.Background(), PaymentIntentParams{
		OrderID:         "ord-1",
		AmountMinor:     21000,
		FeeMinor:        1000,
		Currency:        "USD",
		SellerAccountID: "acct_1",
		BuyerEmail:      "buyer@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, &PaymentIntentResult{
		PaymentIntentID: "pi_1",
		ClientSecret:    "pi_1_secret",
		CustomerID:      "cus_1",
		EphemeralKey:    "ek_1",
	}, res)
	assert.Equal(t, "21000", intentForm["amount"])
	assert.Equal(t, "usd", intentForm["currency"])
	assert.Equal(t, "cus_1", intentForm["customer"])
	assert.Equal(t, "ord-1", intentForm["metadata[order_id]"])
	assert.Equal(t, "acct_1", intentForm["transfer_data[destination]"])
	assert.Equal(t, "1000", intentForm["application_fee_amount"])
}

func TestPerformPaymentIntent_RejectsZeroAmount(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "sk_test", time.Second, logger.NewNop())

	_, err := client.PerformPaymentIntent(context.Background(), PaymentIntentParams{OrderID: "ord-1", Currency: "USD"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestGatewayErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","message":"declined"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", time.Second, logger.NewNop())
	_, err := client.CreateAccount(context.Background(), "seller@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeUpstream))
}

func TestCreateAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/accounts", r.URL.Path)
		assert.Equal(t, "express", r.PostForm.Get("type"))
		assert.Equal(t, "seller@example.com", r.PostForm.Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"acct_1","object":"account"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk_test", time.Second, logger.NewNop())
	id, err := client.CreateAccount(context.Background(), "seller@example.com")

	require.NoError(t, err)
	assert.Equal(t, "acct_1", id)
}
