package errors

// ErrorCode represents a typed error code for categorizing errors.
type ErrorCode int

// General errors (1-99).
const (
	ErrCodeUnknown ErrorCode = 1
)

// Validation errors (100-199).
const (
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrderRequest  ErrorCode = 102
	ErrCodeInvalidQuantity      ErrorCode = 103
	ErrCodeInvalidPrice         ErrorCode = 104
)

// Resource errors (200-299).
const (
	ErrCodeStockNotFound ErrorCode = 200
	ErrCodeOrderNotFound ErrorCode = 201
)

// Upstream quote feed errors (300-399).
const (
	ErrCodeUpstreamUnreachable ErrorCode = 300
	ErrCodeUpstreamBadResponse ErrorCode = 301
)

// Admission errors (400-499).
const (
	ErrCodePriceOutOfRange ErrorCode = 400
)

// Persistence errors (500-599).
const (
	ErrCodeQueryFailed       ErrorCode = 500
	ErrCodeTransactionFailed ErrorCode = 501
	ErrCodeSequenceFailed    ErrorCode = 502
	ErrCodeMigrationFailed   ErrorCode = 503
)
