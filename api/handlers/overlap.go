package handlers

import (
	"net/http"

	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

// OverlapRequest compares two fragments. Zero parameters keep the defaults.
type OverlapRequest struct {
	Sequence1 string `json:"sequence1"`
	Sequence2 string `json:"sequence2"`
	Window    int    `json:"window,omitempty"`
	Word      int    `json:"word,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`
}

// OverlapResponse reports the signed overlap of sequence2 against sequence1.
type OverlapResponse struct {
	Overlap     bool   `json:"overlap"`
	Length      int    `json:"length,omitempty"`
	Distance    int    `json:"distance,omitempty"`
	Containment string `json:"containment"`
	// Window distance between the closest end windows
	WindowDistance int `json:"window_distance"`
}

// OverlapHandler handles pairwise overlap requests.
func OverlapHandler(w http.ResponseWriter, r *http.Request) {
	var req OverlapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	seq1, err := estflow.NewSequence(req.Sequence1)
	if err != nil {
		httpError(w, "sequence1: "+err.Error(), http.StatusBadRequest)
		return
	}
	seq2, err := estflow.NewSequence(req.Sequence2)
	if err != nil {
		httpError(w, "sequence2: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := kmer.DefaultParams()
	if req.Window > 0 {
		params.Window = req.Window
	}
	if req.Word > 0 {
		if err := checkWord(req.Word); err != nil {
			httpError(w, err.Error(), http.StatusBadRequest)
			return
		}
		params.Word = req.Word
	}
	if req.Threshold != nil {
		params.Threshold = *req.Threshold
	}
	res, err := estflow.Overlap(seq1, seq2, params)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := OverlapResponse{
		Overlap:        res.HasOverlap(),
		Containment:    res.Containment.String(),
		WindowDistance: res.WindowDistance,
	}
	if resp.Overlap {
		resp.Length = res.Length
		resp.Distance = res.Distance
	}
	writeJSON(w, resp)
}
