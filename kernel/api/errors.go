package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grocyscan/grocy-scanner/kernel/model"
)

var errInvalidBody = errors.New("invalid request body")

// outcomeStatus maps a gateway outcome onto the http status and body status returned to
// the front end.
func outcomeStatus(o model.Outcome) (int, string) {
	switch o {
	case model.Found:
		return http.StatusOK, StatusSuccess
	case model.NotFound:
		return http.StatusNotFound, StatusNotFound
	case model.Unauthorized:
		return http.StatusUnauthorized, StatusError
	case model.UpstreamError, model.TransportError:
		return http.StatusInternalServerError, StatusError
	}
	return http.StatusInternalServerError, StatusError
}

// errorStatus maps errors raised before or instead of a gateway round trip.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, model.ErrMissingCredential),
		errors.Is(err, model.ErrMissingBarcode),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrUnknownAction):
		return http.StatusBadRequest, StatusError
	case errors.Is(err, model.ErrProductNotFound):
		return http.StatusNotFound, StatusNotFound
	case model.IsDiscoveryError(err),
		errors.Is(err, model.ErrFallbackDisabled):
		return http.StatusNotFound, StatusError
	default:
		return http.StatusInternalServerError, StatusError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, bodyStatus := errorStatus(err)
	log := requestLogger(r).WithError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	writeJSON(w, status, Response{Status: bodyStatus, Message: err.Error()})
}

// writeResult answers with the outcome of a gateway call; message replaces the
// upstream message on success.
func writeResult(w http.ResponseWriter, r *http.Request, result model.Result, message string) {
	status, bodyStatus := outcomeStatus(result.Outcome)
	resp := Response{Status: bodyStatus, Message: result.Message}
	switch result.Outcome {
	case model.Found:
		resp.Message = message
		resp.Product = result.Product
		if result.Product == nil && len(result.Payload) > 0 && json.Valid(result.Payload) {
			resp.Data = result.Payload
		}
	case model.UpstreamError:
		resp.UpstreamStatus = result.Status
		if len(result.Payload) > 0 && json.Valid(result.Payload) {
			resp.Data = result.Payload
		}
	}
	if status >= http.StatusInternalServerError {
		requestLogger(r).WithField("outcome", result.Outcome.String()).Errorf("grocy request failed: %s", result.Message)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
