package model

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Outcome tags the result of a single round trip to the inventory service.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Unauthorized
	UpstreamError
	TransportError
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case UpstreamError:
		return "upstream_error"
	case TransportError:
		return "transport_error"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is the tagged result of a gateway operation. Payload is populated for Found and
// UpstreamError, Product only for Found, Status for every outcome that received a
// response, and Message for the error outcomes.
type Result struct {
	Outcome Outcome
	Status  int
	Payload json.RawMessage
	Product *Product
	Message string
}

// ResultFromStatus maps an upstream status code onto an outcome.
func ResultFromStatus(status int, payload []byte) Result {
	switch status {
	case http.StatusOK:
		return Result{Outcome: Found, Status: status, Payload: payload}
	case http.StatusNotFound:
		return Result{Outcome: NotFound, Status: status, Message: "product not found in grocy"}
	case http.StatusUnauthorized:
		return Result{Outcome: Unauthorized, Status: status, Message: "unauthorized, check your api key"}
	default:
		return Result{Outcome: UpstreamError, Status: status, Payload: payload, Message: upstreamMessage(status, payload)}
	}
}

// upstreamMessage prefers the error_message grocy puts in its error bodies.
func upstreamMessage(status int, payload []byte) string {
	var body struct {
		ErrorMessage string `json:"error_message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		if msg := strings.TrimSpace(body.ErrorMessage); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("failed with status %d", status)
}

// TransportFailure wraps a network level failure.
func TransportFailure(err error) Result {
	return Result{Outcome: TransportError, Message: err.Error()}
}

func (r Result) OK() bool {
	return r.Outcome == Found
}
