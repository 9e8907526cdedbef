package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stockpulse/pulse-backend/internal/models"
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	result, err := s.predictor.Prediction(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotTracked):
			writeError(w, http.StatusNotFound, "Symbol not tracked")
		case errors.Is(err, models.ErrNoData):
			writeError(w, http.StatusNotFound, "No data available for this symbol yet")
		default:
			// Internal details are logged, never returned to the caller.
			fmt.Printf("[API] Prediction error for %s: %v\n", symbol, err)
			writeError(w, http.StatusInternalServerError, "An internal server error occurred")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	series, err := s.predictor.ChartSeries(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, models.ErrNotTracked) {
			writeError(w, http.StatusNotFound, "Symbol not tracked")
			return
		}
		fmt.Printf("[API] Chart error for %s: %v\n", symbol, err)
		writeError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	raw, err := s.predictor.Sentiment(r.Context(), symbol)
	if err != nil {
		fmt.Printf("[API] Sentiment error for %s: %v\n", symbol, err)
		writeError(w, http.StatusInternalServerError, "An internal server error occurred")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
