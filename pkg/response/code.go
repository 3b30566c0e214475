package response

// Business status codes
const (
	CodeSuccess = 0
	CodeError   = 1

	// Catalog errors 100xx
	ErrProductNotFound = 10001
	ErrVariantNotFound = 10002

	// Stock errors 200xx
	ErrStockInvalidVariant = 20001
	ErrStockEntrySold      = 20002
	ErrStockNotFound       = 20003

	// Order errors 300xx
	ErrOrderNotFound     = 30001
	ErrOrderNoValidItems = 30002
	ErrOrderNotPaid      = 30003
	ErrOrderDelivered    = 30004

	// Auth errors 400xx
	ErrAuthFailed   = 40001
	ErrTokenInvalid = 40002
	ErrNoPermission = 40003

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
