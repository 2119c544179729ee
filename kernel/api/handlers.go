package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/grocyscan/grocy-scanner/kernel/model"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": runningMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.scanner.SetAPIKey(req.GrocyAPIKey); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Message: "Configuration updated successfully"})
}

func (s *Server) handleCheckBarcode(w http.ResponseWriter, r *http.Request) {
	var req BarcodeRequest
	if r.Method == http.MethodGet {
		req.Barcode = r.URL.Query().Get("barcode")
	} else if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.scanner.Lookup(r.Context(), req.Barcode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, result, "product found")
}

func (s *Server) handleStock(action, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StockRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := s.scanner.Apply(r.Context(), action, req.Barcode, req.Quantity)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeResult(w, r, result, message)
	}
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}
	reconciled, err := s.reconciler.Reconcile(r.Context(), req.Key())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !reconciled.Result.OK() {
		writeResult(w, r, reconciled.Result, "")
		return
	}
	writeJSON(w, http.StatusOK, Response{
		Status:      StatusSuccess,
		Message:     "Connected to Grocy via internal network!",
		ResolvedURL: reconciled.BaseURL,
	})
}

func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	barcode := r.PathValue("barcode")
	product, err := s.scanner.Fallback(r.Context(), barcode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FallbackResponse{Barcode: barcode, Product: product})
}

func (s *Server) handleScans(w http.ResponseWriter, _ *http.Request) {
	scans := s.scanner.RecentScans()
	if scans == nil {
		scans = []model.ScanRecord{}
	}
	writeJSON(w, http.StatusOK, ScansResponse{Scans: scans})
}

// decodeBody reads a json body into dest. allowEmpty accepts a missing body.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}
