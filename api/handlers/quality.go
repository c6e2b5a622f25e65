package handlers

import (
	"net/http"

	"github.com/aria-lang/estflow-go/internal/quality"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

// ClipRequest carries one read with its quality string.
type ClipRequest struct {
	Sequence  string `json:"sequence"`
	Quality   string `json:"quality"`
	Encoding  string `json:"encoding,omitempty"` // "phred33" or "phred64"
	Threshold int    `json:"threshold"`
	MinLength int    `json:"min_length,omitempty"`
}

// ClipResponse is the clipped read. Kept is false when too little remains.
type ClipResponse struct {
	Sequence       string  `json:"sequence"`
	Start          int     `json:"start"`
	End            int     `json:"end"`
	Kept           bool    `json:"kept"`
	MeanQuality    float64 `json:"mean_quality"`
	ExpectedErrors float64 `json:"expected_errors"`
}

// ClipHandler end-clips a read by quality.
func ClipHandler(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	offset := quality.Phred33
	switch req.Encoding {
	case "", "phred33":
	case "phred64":
		offset = quality.Phred64
	default:
		httpError(w, "unknown encoding, use 'phred33' or 'phred64'", http.StatusBadRequest)
		return
	}

	seq, err := estflow.NewSequence(req.Sequence)
	if err != nil {
		httpError(w, "sequence: "+err.Error(), http.StatusBadRequest)
		return
	}
	scores, err := quality.Decode(req.Quality, offset)
	if err != nil {
		httpError(w, "quality: "+err.Error(), http.StatusBadRequest)
		return
	}

	clipper := quality.NewClipper(req.Threshold, req.MinLength)
	clipped, err := clipper.Clip(seq, scores)
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, end := clipper.Bounds(scores)
	resp := ClipResponse{
		Start:          start,
		End:            end,
		Kept:           clipped != nil,
		MeanQuality:    scores.Average(),
		ExpectedErrors: scores.ExpectedErrors(),
	}
	if clipped != nil {
		resp.Sequence = clipped.Bases
	}
	writeJSON(w, resp)
}
