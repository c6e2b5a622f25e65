package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/estflow-go/internal/kmer"
	"github.com/aria-lang/estflow-go/internal/stats"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

var overlapFlags = map[string]string{
	"window":    "overlap.window",
	"word":      "overlap.word",
	"threshold": "overlap.threshold",
	"format":    "input.format",
}

func newOverlapCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlap <fragments.fa>",
		Short: "List the pairwise overlaps of a fragment set",
		Long: `Compare every pair of fragments with the window distance engine and print
one line per overlapping or contained pair. A negative length places the
second fragment to the left of the first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bind(v, cmd, overlapFlags)
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			store, err := loadFragments(cfg, args[0])
			if err != nil {
				return err
			}
			opts, err := cfg.Options()
			if err != nil {
				return err
			}
			engine, err := kmer.NewEngine(opts.Overlap)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "first\tsecond\tlength\tdistance\tcontainment")
			for i := 0; i < store.Len(); i++ {
				for j := i + 1; j < store.Len(); j++ {
					a, b := store.All()[i], store.All()[j]
					if a.Len() < engine.Params().Window || b.Len() < engine.Params().Window {
						continue
					}
					r := engine.Overlap(a.Bases, b.Bases)
					if !r.HasOverlap() && r.Containment == kmer.NotContained {
						continue
					}
					length := "-"
					if r.HasOverlap() {
						length = fmt.Sprint(r.Length)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.Name(), b.Name(), length, r.WindowDistance, r.Containment)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("window", 0, "bases per end window")
	cmd.Flags().Int("word", 0, "k-mer size")
	cmd.Flags().Int("threshold", 0, "largest window distance accepted as an overlap")
	cmd.Flags().String("format", "", "input format: auto, fasta or fastq")
	return cmd
}

func newAlignCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <fragments.fa>",
		Short: "Align the first two fragments of a file",
		Long: `Align the first two fragments of a file. The local and global methods run
in linear space; smith-waterman and needleman-wunsch keep a full matrix and
are limited to short fragments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			store, err := loadFragments(cfg, args[0])
			if err != nil {
				return err
			}
			if store.Len() < 2 {
				return fmt.Errorf("%s holds %d fragments, need two", args[0], store.Len())
			}
			a, b := store.All()[0], store.All()[1]
			method, _ := cmd.Flags().GetString("method")
			out := cmd.OutOrStdout()

			if scoreOnly, _ := cmd.Flags().GetBool("score-only"); scoreOnly {
				score, err := estflow.AlignScore(a, b, method, &cfg.Alignment)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s vs %s\tscore %d\n", a.Name(), b.Name(), score)
				return nil
			}

			aln, err := estflow.Align(a, b, method, &cfg.Alignment)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s vs %s\n%s\n", a.Name(), b.Name(), aln.Format())
			return nil
		},
	}
	cmd.Flags().String("method", estflow.MethodLocal, "local, global, smith-waterman or needleman-wunsch")
	cmd.Flags().Bool("score-only", false, "print only the optimal score")
	return cmd
}

func newStatsCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <fragments.fa>",
		Short: "Summarise a fragment set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, v)
			if err != nil {
				return err
			}
			store, err := loadFragments(cfg, args[0])
			if err != nil {
				return err
			}
			fs, err := stats.FromStore(store)
			if err != nil {
				return err
			}
			if top, _ := cmd.Flags().GetInt("top"); top > 0 {
				word, _ := cmd.Flags().GetInt("word")
				if fs.Words, err = stats.Words(store, word, top); err != nil {
					return err
				}
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(fs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), fs.String())
			if fs.Words != nil {
				fmt.Fprintln(cmd.OutOrStdout(), fs.Words.String())
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	cmd.Flags().Int("top", 0, "list the most frequent words, 0 for none")
	cmd.Flags().Int("word", 4, "word size for --top")
	return cmd
}
