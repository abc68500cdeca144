package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/leclercq/boutique/checkout/otel"
	"github.com/leclercq/boutique/checkout/service"
	inErrors "github.com/leclercq/boutique/internal/errors"
	commonHttp "github.com/leclercq/boutique/internal/http"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	"github.com/leclercq/boutique/internal/session"
)

type PaymentController struct {
	service *service.CheckoutService
}

func AttachPaymentController(mux *mux.Router, service *service.CheckoutService) {
	controller := PaymentController{service: service}

	router := mux.PathPrefix("/paiement").Subrouter()
	router.HandleFunc("", controller.BeginCheckout).Methods(http.MethodGet)
	router.HandleFunc("/succes/{token}", controller.ConfirmPayment).Methods(http.MethodGet)
	router.HandleFunc("/echec/{commande}", controller.CancelPayment).Methods(http.MethodGet)
}

// BeginCheckout turns the session's cart into a pending order and redirects
// the browser to the provider's hosted payment page.
func (t PaymentController) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController BeginCheckout")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController BeginCheckout").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "beginning checkout").
		Logger()

	logger.Info().Msg("beginning checkout")
	c = logger.WithContext(c)
	checkoutUrl, err := t.service.BeginCheckout(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed beginning checkout with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if errors.Is(err, inErrors.ErrCartEmpty) {
			http.Redirect(w, r, "/panier", http.StatusSeeOther)
			return
		}
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrCheckoutProvider) {
			statusCode = http.StatusBadGateway
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyCheckoutURL, checkoutUrl).Msg("began checkout")

	http.Redirect(w, r, checkoutUrl, http.StatusSeeOther)
}

// ConfirmPayment is the provider's success callback. The token in the path is
// the only credential; an unknown token is a 404.
func (t PaymentController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController ConfirmPayment")
	defer span.End()

	pathValues := mux.Vars(r)
	token := pathValues["token"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController ConfirmPayment").
		Str(log.KeyProcess, "confirming payment").
		Logger()

	logger.Info().Msg("confirming payment")
	c = logger.WithContext(c)
	order, err := t.service.ConfirmPayment(c, token)
	if err != nil {
		err = fmt.Errorf("failed confirming payment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrOrderNotFound) {
			statusCode = http.StatusNotFound
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("confirmed payment")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully confirmed payment",
		"data": map[string]interface{}{
			"order": order,
		},
	})
}

// CancelPayment is the provider's cancel callback. The abandoned order is
// replayed into the cart and removed, then the browser goes back to the cart.
func (t PaymentController) CancelPayment(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController CancelPayment")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController CancelPayment").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "validating orderId").
		Logger()

	logger.Info().Msg("validating orderId")
	pathValues := mux.Vars(r)
	orderId, err := uuid.Parse(pathValues["commande"])
	if err != nil {
		err = fmt.Errorf("failed validating orderId=%s with error=%w", pathValues["commande"], err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()
	logger.Info().Msg("validated orderId")

	logger = logger.With().Str(log.KeyProcess, "cancelling payment").Logger()
	logger.Info().Msg("cancelling payment")
	c = logger.WithContext(c)
	err = t.service.CancelPayment(c, sessionID, orderId)
	if err != nil {
		err = fmt.Errorf("failed cancelling payment with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrOrderNotFound) {
			statusCode = http.StatusNotFound
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cancelled payment")

	http.Redirect(w, r, "/panier", http.StatusSeeOther)
}
