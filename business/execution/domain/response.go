package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/internal/apperror"
)

// Status is the outcome of one request. Exactly one of the two values
// appears on the wire.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response is the structured outcome of one request. Profit and
// ErrorMessage are mutually exclusive: Success populates profit,
// elapsed time and gas; Failure populates only the message. Failed
// requests carry a zero elapsed time, only successful executions are
// timed for cost accounting.
type Response struct {
	Status       Status
	Profit       decimal.Decimal
	Elapsed      time.Duration
	GasUsed      uint64
	ErrorMessage string
}

// Success builds a success response.
func Success(profit decimal.Decimal, elapsed time.Duration, gasUsed uint64) Response {
	return Response{
		Status:  StatusSuccess,
		Profit:  profit,
		Elapsed: elapsed,
		GasUsed: gasUsed,
	}
}

// Failure builds an error response from any engine-level failure.
func Failure(err error) Response {
	return Response{
		Status:       StatusError,
		ErrorMessage: apperror.Message(err),
	}
}

// IsSuccess reports whether the response carries a profit.
func (r Response) IsSuccess() bool {
	return r.Status == StatusSuccess
}
