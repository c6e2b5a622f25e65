package handlers

import (
	"net/http"

	"github.com/aria-lang/estflow-go/internal/sequence"
	"github.com/aria-lang/estflow-go/internal/stats"
)

// StatsRequest lists the fragments to summarise.
type StatsRequest struct {
	Sequences []string `json:"sequences"`
}

// FragmentStatsHandler summarises a fragment set.
func FragmentStatsHandler(w http.ResponseWriter, r *http.Request) {
	var req StatsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	store, err := sequence.FromStrings(req.Sequences)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}
	fs, err := stats.FromStore(store)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, fs)
}
