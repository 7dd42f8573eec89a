package constants

// for api context
type ContextKey string

const (
	SessionIDHeaderKey ContextKey = "X-Session-ID"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)

// 檢查結果
const (
	CheckoutOutcomeOK             = "ok"
	CheckoutOutcomeRoundClosed    = "round_closed"
	CheckoutOutcomeStockExceeded  = "stock_exceeded"
	CheckoutOutcomeInvalid        = "invalid"
	CheckoutOutcomeUnavailable    = "product_unavailable"
	CheckoutOutcomePersistenceErr = "persistence_error"
)
