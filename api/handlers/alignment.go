package handlers

import (
	"net/http"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

// AlignmentRequest represents an alignment request. Scoring is optional.
type AlignmentRequest struct {
	Sequence1 string                   `json:"sequence1"`
	Sequence2 string                   `json:"sequence2"`
	Scoring   *alignment.ScoringMatrix `json:"scoring,omitempty"`
}

// AlignmentResponse represents the response for alignment.
type AlignmentResponse struct {
	AlignedSeq1 string  `json:"aligned_seq1"`
	AlignedSeq2 string  `json:"aligned_seq2"`
	Score       int     `json:"score"`
	Identity    float64 `json:"identity"`
	CIGAR       string  `json:"cigar"`
	Start1      int     `json:"start1"`
	End1        int     `json:"end1"`
	Start2      int     `json:"start2"`
	End2        int     `json:"end2"`
	Matches     int     `json:"matches"`
	Mismatches  int     `json:"mismatches"`
	Gaps        int     `json:"gaps"`
}

func newAlignmentResponse(a *alignment.Alignment) AlignmentResponse {
	return AlignmentResponse{
		AlignedSeq1: a.AlignedSeq1,
		AlignedSeq2: a.AlignedSeq2,
		Score:       a.Score,
		Identity:    a.Identity,
		CIGAR:       a.ToCIGAR(),
		Start1:      a.Start1,
		End1:        a.End1,
		Start2:      a.Start2,
		End2:        a.End2,
		Matches:     a.MatchCount(),
		Mismatches:  a.MismatchCount(),
		Gaps:        a.TotalGaps(),
	}
}

func decodeAlignment(w http.ResponseWriter, r *http.Request) (*estflow.Sequence, *estflow.Sequence, *alignment.ScoringMatrix, bool) {
	var req AlignmentRequest
	if !decodeJSON(w, r, &req) {
		return nil, nil, nil, false
	}
	seq1, err := estflow.NewSequence(req.Sequence1)
	if err != nil {
		httpError(w, "sequence1: "+err.Error(), http.StatusBadRequest)
		return nil, nil, nil, false
	}
	seq2, err := estflow.NewSequence(req.Sequence2)
	if err != nil {
		httpError(w, "sequence2: "+err.Error(), http.StatusBadRequest)
		return nil, nil, nil, false
	}
	scoring := req.Scoring
	if scoring == nil {
		scoring = alignment.DefaultDNA()
	} else if err := scoring.Validate(); err != nil {
		httpError(w, "scoring: "+err.Error(), http.StatusBadRequest)
		return nil, nil, nil, false
	}
	return seq1, seq2, scoring, true
}

func alignHandler(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq1, seq2, scoring, ok := decodeAlignment(w, r)
		if !ok {
			return
		}
		a, err := estflow.Align(seq1, seq2, method, scoring)
		if err != nil {
			httpError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, newAlignmentResponse(a))
	}
}

var (
	// LocalAlignHandler handles linear-space local alignment requests.
	LocalAlignHandler = alignHandler(estflow.MethodLocal)
	// GlobalAlignHandler handles linear-space global alignment requests.
	GlobalAlignHandler = alignHandler(estflow.MethodGlobal)
	// SmithWatermanHandler handles full-matrix local alignment requests.
	SmithWatermanHandler = alignHandler(estflow.MethodSmithWaterman)
	// NeedlemanWunschHandler handles full-matrix global alignment requests.
	NeedlemanWunschHandler = alignHandler(estflow.MethodNeedlemanWunsch)
)
