package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/leclercq/boutique/internal/constants"
)

var Tracer = otel.Tracer(constants.AppBoutiqueService)
