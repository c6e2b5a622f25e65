package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/aria-lang/estflow-go/internal/assembly"
	"github.com/aria-lang/estflow-go/internal/consensus"
	"github.com/aria-lang/estflow-go/internal/sequence"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

// MaxFragments bounds the fragments accepted by one request.
var MaxFragments = 5000

// Fragment is one input EST.
type Fragment struct {
	ID       string `json:"id,omitempty"`
	Sequence string `json:"sequence"`
}

// AssembleOptions overrides the default assembly settings. Zero values keep
// the defaults.
type AssembleOptions struct {
	Window    int    `json:"window,omitempty"`
	Word      int    `json:"word,omitempty"`
	Threshold *int   `json:"threshold,omitempty"`
	MaxDepth  int    `json:"max_depth,omitempty"`
	Mode      string `json:"mode,omitempty"`
	ASWindow  int    `json:"as_window,omitempty"`
}

// AssembleRequest carries fragments either as a list or as FASTA text.
type AssembleRequest struct {
	Fragments []Fragment      `json:"fragments,omitempty"`
	FASTA     string          `json:"fasta,omitempty"`
	Options   AssembleOptions `json:"options"`
}

// AssembleResponse is the outcome of one run.
type AssembleResponse struct {
	RunID      string              `json:"run_id"`
	Contigs    []*consensus.Contig `json:"contigs"`
	Singletons []Fragment          `json:"singletons"`
	Summary    estflow.Summary     `json:"summary"`
}

func (req *AssembleRequest) fragments() ([]*sequence.Sequence, error) {
	if req.FASTA != "" {
		return estflow.ParseFASTA(strings.NewReader(req.FASTA))
	}
	seqs := make([]*sequence.Sequence, 0, len(req.Fragments))
	for i, f := range req.Fragments {
		seq, err := sequence.New(f.Sequence)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		seq.ID = f.ID
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

func (o AssembleOptions) apply(opts *assembly.Options) error {
	if o.Window > 0 {
		opts.Overlap.Window = o.Window
	}
	if o.Word > 0 {
		if err := checkWord(o.Word); err != nil {
			return err
		}
		opts.Overlap.Word = o.Word
	}
	if o.Threshold != nil {
		opts.Overlap.Threshold = *o.Threshold
	}
	if o.MaxDepth > 0 {
		opts.MaxDepth = o.MaxDepth
	}
	if o.Mode != "" {
		mode, err := consensus.ParseMode(o.Mode)
		if err != nil {
			return err
		}
		opts.Consensus.Mode = mode
	}
	if o.ASWindow > 0 {
		opts.Consensus.Window = o.ASWindow
	}
	if err := opts.Overlap.Validate(); err != nil {
		return err
	}
	return opts.Consensus.Validate()
}

// AssembleHandler runs the whole pipeline on the posted fragments.
func AssembleHandler(w http.ResponseWriter, r *http.Request) {
	var req AssembleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	seqs, err := req.fragments()
	if err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(seqs) > MaxFragments {
		httpError(w, fmt.Sprintf("at most %d fragments per request", MaxFragments), http.StatusRequestEntityTooLarge)
		return
	}
	opts := estflow.DefaultOptions()
	if err := req.Options.apply(&opts); err != nil {
		httpError(w, "options: "+err.Error(), http.StatusBadRequest)
		return
	}

	store := estflow.NewStore(seqs)
	res, err := assembly.Run(r.Context(), store, opts)
	var inputErr *assembly.InputError
	switch {
	case errors.As(err, &inputErr):
		httpError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		httpError(w, "assembly cancelled", http.StatusServiceUnavailable)
		return
	case err != nil:
		log.WithError(err).Error("assembly failed")
		httpError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := AssembleResponse{
		RunID:      res.RunID,
		Contigs:    res.Contigs,
		Singletons: make([]Fragment, 0, len(res.Singletons)),
		Summary:    estflow.Summarize(store.Len(), res),
	}
	if resp.Contigs == nil {
		resp.Contigs = []*consensus.Contig{}
	}
	for _, i := range res.Singletons {
		seq, _ := store.Get(i)
		resp.Singletons = append(resp.Singletons, Fragment{ID: seq.Name(), Sequence: seq.Bases})
	}
	writeJSON(w, resp)
}
