package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Execution-engine specific error codes
const (
	// Rate source errors
	CodeUnsupportedExchange Code = "UNSUPPORTED_EXCHANGE"
	CodeRateFetchFailed     Code = "RATE_FETCH_FAILED"
	CodeRateSourceOpen      Code = "RATE_SOURCE_OPEN"

	// Strategy errors
	CodeBelowThreshold  Code = "BELOW_THRESHOLD"
	CodeExecutionFailed Code = "EXECUTION_FAILED"
	CodeInvalidRequest  Code = "INVALID_REQUEST"

	// Wire protocol errors
	CodeDecodeError   Code = "DECODE_ERROR"
	CodeEncodeError   Code = "ENCODE_ERROR"
	CodeFrameTooLarge Code = "FRAME_TOO_LARGE"

	// Connection errors
	CodeConnectionClosed Code = "CONNECTION_CLOSED"
	CodeReadFailed       Code = "READ_FAILED"
	CodeWriteFailed      Code = "WRITE_FAILED"
)
