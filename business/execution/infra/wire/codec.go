// Package wire defines the JSON encoding of requests and responses.
// The field names are part of the protocol contract; unknown or
// missing request fields are a decode error, never silently defaulted.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/funding-engine/business/execution/domain"
	"github.com/fd1az/funding-engine/internal/apperror"
)

// request mirrors the inbound JSON envelope. Pointer fields distinguish
// absent from zero-valued.
type request struct {
	StrategyID        *string  `json:"strategy_id"`
	Symbol            *string  `json:"symbol"`
	PrimaryExchange   *string  `json:"primary_exchange"`
	SecondaryExchange *string  `json:"secondary_exchange"`
	Amount            *float64 `json:"amount"`
	Priority          *int     `json:"priority"`
	Timestamp         *string  `json:"timestamp"`
}

// response mirrors the outbound JSON envelope. Profit and gas_used
// appear only on success, error_message only on error.
type response struct {
	Status        string   `json:"status"`
	Profit        *float64 `json:"profit,omitempty"`
	ExecutionTime string   `json:"execution_time"`
	GasUsed       *uint64  `json:"gas_used,omitempty"`
	ErrorMessage  *string  `json:"error_message,omitempty"`
}

// DecodeRequest strictly decodes one request payload.
func DecodeRequest(data []byte) (domain.Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w request
	if err := dec.Decode(&w); err != nil {
		return domain.Request{}, apperror.New(apperror.CodeDecodeError,
			apperror.WithContext(err.Error()), apperror.WithCause(err))
	}

	// Trailing data after the JSON object is also malformed.
	if dec.More() {
		return domain.Request{}, apperror.New(apperror.CodeDecodeError,
			apperror.WithContext("unexpected trailing data"))
	}

	if field, ok := missingField(w); ok {
		return domain.Request{}, apperror.New(apperror.CodeDecodeError,
			apperror.WithContext(fmt.Sprintf("missing required field %q", field)))
	}

	return domain.Request{
		StrategyID:        *w.StrategyID,
		Symbol:            *w.Symbol,
		PrimaryExchange:   *w.PrimaryExchange,
		SecondaryExchange: *w.SecondaryExchange,
		Amount:            decimal.NewFromFloat(*w.Amount),
		Priority:          *w.Priority,
		Timestamp:         *w.Timestamp,
	}, nil
}

func missingField(w request) (string, bool) {
	switch {
	case w.StrategyID == nil:
		return "strategy_id", true
	case w.Symbol == nil:
		return "symbol", true
	case w.PrimaryExchange == nil:
		return "primary_exchange", true
	case w.SecondaryExchange == nil:
		return "secondary_exchange", true
	case w.Amount == nil:
		return "amount", true
	case w.Priority == nil:
		return "priority", true
	case w.Timestamp == nil:
		return "timestamp", true
	}
	return "", false
}

// EncodeResponse encodes one response payload, without framing.
func EncodeResponse(resp domain.Response) ([]byte, error) {
	w := response{
		Status:        string(resp.Status),
		ExecutionTime: formatElapsed(resp.Elapsed),
	}

	if resp.IsSuccess() {
		profit, _ := resp.Profit.Float64()
		w.Profit = &profit
		gas := resp.GasUsed
		w.GasUsed = &gas
	} else {
		msg := resp.ErrorMessage
		w.ErrorMessage = &msg
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeEncodeError, "", err)
	}
	return data, nil
}

// DecodeResponse decodes one response payload. Used by clients and
// round-trip tests.
func DecodeResponse(data []byte) (domain.Response, error) {
	var w response
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Response{}, apperror.New(apperror.CodeDecodeError,
			apperror.WithContext(err.Error()), apperror.WithCause(err))
	}

	resp := domain.Response{
		Status:  domain.Status(w.Status),
		Elapsed: parseElapsed(w.ExecutionTime),
	}
	if w.Profit != nil {
		resp.Profit = decimal.NewFromFloat(*w.Profit)
	}
	if w.GasUsed != nil {
		resp.GasUsed = *w.GasUsed
	}
	if w.ErrorMessage != nil {
		resp.ErrorMessage = *w.ErrorMessage
	}
	return resp, nil
}

// formatElapsed renders a duration as whole milliseconds, the
// protocol's duration format.
func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func parseElapsed(s string) time.Duration {
	var ms int64
	if _, err := fmt.Sscanf(s, "%dms", &ms); err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
