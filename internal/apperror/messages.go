package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeServiceTimeout:     "Service request timeout",
	CodeServiceUnavailable: "Service temporarily unavailable",
	CodeRateLimitExceeded:  "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Rate source errors
	CodeUnsupportedExchange: "Unsupported exchange",
	CodeRateFetchFailed:     "Failed to fetch funding rate",
	CodeRateSourceOpen:      "Rate source circuit breaker is open",

	// Strategy errors
	CodeBelowThreshold:  "Funding rate difference below threshold",
	CodeExecutionFailed: "Arbitrage execution failed",
	CodeInvalidRequest:  "Invalid arbitrage request",

	// Wire protocol errors
	CodeDecodeError:   "Failed to decode request payload",
	CodeEncodeError:   "Failed to encode response payload",
	CodeFrameTooLarge: "Message frame exceeds size limit",

	// Connection errors
	CodeConnectionClosed: "Connection closed by peer",
	CodeReadFailed:       "Failed to read from connection",
	CodeWriteFailed:      "Failed to write to connection",
}
