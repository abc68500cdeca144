package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/leclercq/boutique/cart/otel"
	"github.com/leclercq/boutique/cart/service"
	"github.com/leclercq/boutique/cart/pkg/request"
	inErrors "github.com/leclercq/boutique/internal/errors"
	commonHttp "github.com/leclercq/boutique/internal/http"
	"github.com/leclercq/boutique/internal/log"
	inOtel "github.com/leclercq/boutique/internal/otel"
	"github.com/leclercq/boutique/internal/session"
)

type CartController struct {
	service  service.CartService
	validate *validator.Validate
}

func AttachCartController(
	mux *mux.Router,
	service service.CartService,
	validate *validator.Validate,
) {
	controller := CartController{service: service, validate: validate}

	router := mux.PathPrefix("/panier").Subrouter()
	router.HandleFunc("", controller.Index).Methods(http.MethodGet)
	router.HandleFunc("/vider", controller.Clear).Methods(http.MethodGet)
	router.HandleFunc("/add/{produit}", controller.AddItem).
		Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/remove/{produit}", controller.RemoveItem).Methods(http.MethodGet)
}

// Index lists the session's cart joined against the catalog, with totals.
func (t CartController) Index(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Index")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Index").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "listing cart").
		Logger()

	logger.Info().Msg("listing cart")
	c = logger.WithContext(c)
	cart, err := t.service.ListWithTotals(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed listing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrStaleCartLine) {
			statusCode = http.StatusConflict
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Any(log.KeyTotal, cart.Total).Msg("listed cart")

	commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully listed cart",
		"data": map[string]interface{}{
			"cart": cart,
		},
	})
}

// AddItem adds the product in the path to the cart. The optional form value
// qtte carries the quantity and defaults to 1; posting the same product again
// increments the existing line.
func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "validating request").
		Logger()

	logger.Info().Msg("validating request")
	quantity := r.FormValue("qtte")
	if quantity == "" {
		quantity = "1"
	}
	param := request.AddToCart{
		ProductID: mux.Vars(r)["produit"],
		Quantity:  quantity,
	}
	err := t.validate.StructCtx(c, param)
	if err != nil {
		err = fmt.Errorf("failed validating request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	productId := uuid.MustParse(param.ProductID)
	delta := decimal.RequireFromString(param.Quantity)
	logger = logger.With().Str(log.KeyProductID, param.ProductID).Logger()
	logger.Info().Msg("validated request")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	_, err = t.service.AddItem(c, sessionID, productId, delta)
	if err != nil {
		err = fmt.Errorf("failed adding productId=%s to cart with error=%w", param.ProductID, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		if errors.Is(err, inErrors.ErrProductNotFound) {
			statusCode = http.StatusNotFound
		}
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added item to cart")

	http.Redirect(w, r, "/produits", http.StatusSeeOther)
}

// RemoveItem drops the product's line from the cart. Removing a product that
// is not in the cart is a no-op.
func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "validating productId").
		Logger()

	logger.Info().Msg("validating productId")
	pathValues := mux.Vars(r)
	productId, err := uuid.Parse(pathValues["produit"])
	if err != nil {
		err = fmt.Errorf("failed validating productId=%s with error=%w", pathValues["produit"], err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()
	logger.Info().Msg("validated productId")

	logger = logger.With().Str(log.KeyProcess, "removing item from cart").Logger()
	logger.Info().Msg("removing item from cart")
	c = logger.WithContext(c)
	_, err = t.service.RemoveItem(c, sessionID, productId)
	if err != nil {
		err = fmt.Errorf("failed removing productId=%s from cart with error=%w", productId.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed item from cart")

	http.Redirect(w, r, "/panier", http.StatusSeeOther)
}

// Clear empties the cart and sends the browser back to it.
func (t CartController) Clear(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Clear")
	defer span.End()

	sessionID := session.SessionIDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Clear").
		Str(log.KeySessionID, sessionID).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	err := t.service.Clear(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		commonHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	http.Redirect(w, r, "/panier", http.StatusSeeOther)
}
