package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/estflow-go/internal/assembly"
	"github.com/aria-lang/estflow-go/internal/config"
	"github.com/aria-lang/estflow-go/internal/graph"
	"github.com/aria-lang/estflow-go/internal/layout"
	"github.com/aria-lang/estflow-go/internal/quality"
	"github.com/aria-lang/estflow-go/internal/sequence"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

func newAssembleCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble <fragments.fa|fragments.fq>",
		Short: "Assemble fragments into consensus contigs",
		Long: `Assemble a FASTA or FASTQ file of EST fragments, optionally gzip or zstd
compressed. The consensus is written to --out, or stdout when no file is given.`,
		Args:                       cobra.ExactArgs(1),
		SuggestionsMinimumDistance: 3,
		RunE: func(cmd *cobra.Command, args []string) error {
			bind(v, cmd, assembleFlags)
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			progress, _ := cmd.Flags().GetBool("progress")
			return runAssemble(cmd, cfg, args[0], progress)
		},
	}

	f := cmd.Flags()
	f.StringP("out", "o", "", "consensus FASTA file")
	f.String("singletons", "", "singleton FASTA file")
	f.String("counts", "", "used-fragment counts file")
	f.String("branches", "", "alternative splicing branches file")
	f.String("dot", "", "Graphviz file of the similarity tree and overlap graph")
	f.String("tree", "", "edge list of a precomputed similarity tree")
	f.Int("window", 0, "bases per end window")
	f.Int("word", 0, "k-mer size")
	f.Int("threshold", 0, "largest window distance accepted as an overlap")
	f.Int("max-depth", 0, "cap on the left-end search depth, 0 for none")
	f.String("mode", "", "splicing detection: none, type-i or type-ii")
	f.Int("as-window", 0, "splicing detection window")
	f.String("format", "", "input format: auto, fasta or fastq")
	f.Int("min-quality", 0, "clip FASTQ ends back to this Phred quality")
	f.Int("min-length", 0, "drop clipped reads shorter than this")
	f.Bool("phred64", false, "FASTQ qualities use Phred+64")
	f.Bool("progress", false, "show a progress bar for the distance phase")

	return cmd
}

var assembleFlags = map[string]string{
	"out":         "output.consensus",
	"singletons":  "output.singletons",
	"counts":      "output.counts",
	"branches":    "output.branches",
	"dot":         "output.dot",
	"tree":        "graph.tree",
	"window":      "overlap.window",
	"word":        "overlap.word",
	"threshold":   "overlap.threshold",
	"max-depth":   "graph.max-depth",
	"mode":        "consensus.mode",
	"as-window":   "consensus.window",
	"format":      "input.format",
	"min-quality": "input.min-quality",
	"min-length":  "input.min-length",
	"phred64":     "input.phred64",
}

// loadFragments reads the input file, end-clipping FASTQ reads when a
// minimum quality is set.
func loadFragments(cfg *config.Config, filename string) (*sequence.Store, error) {
	var clipper *quality.Clipper
	if cfg.Input.MinQuality > 0 {
		clipper = quality.NewClipper(cfg.Input.MinQuality, cfg.Input.MinLength)
	}
	offset := quality.Phred33
	if cfg.Input.Phred64 {
		offset = quality.Phred64
	}
	seqs, err := estflow.Load(filename, cfg.Input.Format, offset, clipper)
	if err != nil {
		return nil, err
	}
	log.Debugf("read %d fragments from %s", len(seqs), filename)
	return sequence.NewStore(seqs), nil
}

func loadTree(filename string, n int) (*graph.Tree, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening tree: %w", err)
	}
	defer f.Close()
	return graph.ReadEdgeList(f, n)
}

func runAssemble(cmd *cobra.Command, cfg *config.Config, input string, progress bool) error {
	store, err := loadFragments(cfg, input)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if cfg.Graph.Tree != "" {
		if opts.Tree, err = loadTree(cfg.Graph.Tree, store.Len()); err != nil {
			return err
		}
	} else if progress {
		bar := pb.Full.New(store.Len()).SetWriter(cmd.ErrOrStderr()).Start()
		opts.Progress = func(done, total int) {
			bar.SetCurrent(int64(done))
		}
		defer bar.Finish()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := assembly.Run(ctx, store, opts)
	if err != nil {
		return err
	}

	if cfg.Output.Consensus == "" {
		if err := estflow.WriteConsensus(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{cfg.Output.Consensus, func(w io.Writer) error { return estflow.WriteConsensus(w, res) }},
		{cfg.Output.Singletons, func(w io.Writer) error { return estflow.WriteSingletons(w, store, res) }},
		{cfg.Output.Counts, func(w io.Writer) error { return estflow.WriteCounts(w, store, res) }},
		{cfg.Output.Branches, func(w io.Writer) error { return estflow.WriteBranches(w, res) }},
		{cfg.Output.DOT, func(w io.Writer) error { return writeGraphs(w, store, res) }},
	}
	for _, out := range writers {
		if err := estflow.WriteFile(out.name, out.write); err != nil {
			return err
		}
	}

	log.WithField("run", res.RunID).Info(estflow.Summarize(store.Len(), res).String())
	return nil
}

// writeGraphs renders the similarity tree followed by the overlap graph.
func writeGraphs(w io.Writer, store *sequence.Store, res *assembly.Result) error {
	label := func(i int) string {
		seq, _ := store.Get(i)
		return seq.Name()
	}
	if err := graph.WriteDOT(w, "similarity", store.Len(), res.Tree.Edges(), false, label); err != nil {
		return err
	}
	overlaps := layout.DistanceGraph(store.Len(), res.Tuples)
	return graph.WriteDOT(w, "overlaps", store.Len(), overlaps.Edges(), true, label)
}
