package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "requestId"
	KeySessionID     = "sessionId"
	KeyCartKey       = "cartKey"
	KeyCacheKey      = "cacheKey"
	KeyProductID     = "productId"
	KeyOrderID       = "orderId"
	KeyOrderToken    = "orderToken"
	KeyQuantity      = "quantity"
	KeyCart          = "cart"
	KeyTotal         = "total"
	KeyCheckoutURL   = "checkoutUrl"
	KeyDbURL         = "dbUrl"
	KeyRequest       = "request"
	KeyHeader        = "header"
	KeyBody          = "body"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"

	HeaderRequestID = "X-Request-Id"
)
