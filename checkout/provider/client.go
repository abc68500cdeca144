package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/leclercq/boutique/checkout/otel"
	"github.com/leclercq/boutique/internal/config"
	inErrors "github.com/leclercq/boutique/internal/errors"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
)

// Client talks to the hosted-checkout provider. One blocking call per
// checkout; transport and non-2xx failures carry ErrCheckoutProvider.
type Client struct {
	url       string
	secretKey string
}

func NewClient(cfg config.Checkout) *Client {
	return &Client{url: cfg.Url, secretKey: cfg.SecretKey}
}

type CheckoutSessionParams struct {
	Mode       string     `json:"mode"`
	LineItems  []LineItem `json:"line_items"`
	SuccessUrl string     `json:"success_url"`
	CancelUrl  string     `json:"cancel_url"`
}

type LineItem struct {
	Quantity  decimal.Decimal `json:"quantity"`
	PriceData PriceData       `json:"price_data"`
}

type PriceData struct {
	Currency string `json:"currency"`
	// UnitAmount is the VAT-inclusive unit price in minor units (cents).
	UnitAmount  int64       `json:"unit_amount"`
	ProductData ProductData `json:"product_data"`
}

type ProductData struct {
	Name string `json:"name"`
	// Images must be absolute URLs; the provider hotlinks them on the
	// hosted page.
	Images []string `json:"images,omitempty"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	Url string `json:"url"`
}

// CreateCheckoutSession asks the provider for a hosted checkout page and
// returns the session carrying the redirect URL.
func (cl *Client) CreateCheckoutSession(
	c context.Context,
	param CheckoutSessionParams,
) (CheckoutSession, error) {
	c, span := otel.Tracer.Start(c, "provider CreateCheckoutSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "provider CreateCheckoutSession").
		Str(log.KeyProcess, "creating checkout session").
		Logger()

	logger.Trace().Msg("creating checkout session")
	body, err := json.Marshal(param)
	if err != nil {
		err = fmt.Errorf("failed marshaling checkout session params with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CheckoutSession{}, err
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.url+"/v1/checkout/sessions",
		bytes.NewBuffer(body),
	)
	if err != nil {
		err = fmt.Errorf("failed creating request to checkout provider with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CheckoutSession{}, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+cl.secretKey)
	req.Header.Add(log.HeaderRequestID, log.RequestIDFromContext(c))

	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling checkout provider with error=%w", errors.Join(inErrors.ErrCheckoutProvider, err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CheckoutSession{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&respBody)
		err = fmt.Errorf(
			"checkout provider returned status code=%d with message=%v and error=%w",
			resp.StatusCode,
			respBody["message"],
			inErrors.ErrCheckoutProvider,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CheckoutSession{}, err
	}

	session := CheckoutSession{}
	err = json.NewDecoder(resp.Body).Decode(&session)
	if err != nil {
		err = fmt.Errorf("failed decoding checkout session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return CheckoutSession{}, err
	}
	logger.Info().Str(log.KeyCheckoutURL, session.Url).Msg("created checkout session")

	return session, nil
}
