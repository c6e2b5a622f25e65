// Package config holds the run settings unmarshalled from Viper: defaults,
// an optional YAML settings file, ESTFLOW_* environment variables and
// command line flags, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/aria-lang/estflow-go/internal/alignment"
	"github.com/aria-lang/estflow-go/internal/assembly"
	"github.com/aria-lang/estflow-go/internal/consensus"
	"github.com/aria-lang/estflow-go/internal/kmer"
)

// EnvPrefix prefixes environment overrides, e.g. ESTFLOW_OVERLAP_WINDOW.
const EnvPrefix = "ESTFLOW"

// OverlapConfig tunes the window distance engine.
type OverlapConfig struct {
	// bases per end window
	Window int `mapstructure:"window"`
	// k-mer size of the window histograms
	Word int `mapstructure:"word"`
	// largest window distance accepted as an overlap
	Threshold int `mapstructure:"threshold"`
	// largest window distance accepted as a containment
	InclusionThreshold int `mapstructure:"inclusion-threshold"`
	// largest fraction of mismatching bases across an overlap
	MaxMismatchRate float64 `mapstructure:"max-mismatch-rate"`
}

// GraphConfig covers the similarity tree and six-tuple search.
type GraphConfig struct {
	// cap on the false-left-end search depth, 0 for none
	MaxDepth int `mapstructure:"max-depth"`
	// edge list of an externally computed similarity tree
	Tree string `mapstructure:"tree"`
	// identity for aligned containment, 0 for exact containment only
	ContainmentIdentity float64 `mapstructure:"containment-identity"`
}

// ConsensusConfig covers reconstruction and splicing detection.
type ConsensusConfig struct {
	Mode         string  `mapstructure:"mode"`
	Window       int     `mapstructure:"window"`
	TypeIFactor  float64 `mapstructure:"type-i-factor"`
	TypeIIFactor float64 `mapstructure:"type-ii-factor"`
	Consecutive  bool    `mapstructure:"consecutive"`
	Slack        int     `mapstructure:"slack"`
}

// InputConfig describes how fragments are read.
type InputConfig struct {
	// fasta, fastq or auto (by extension)
	Format string `mapstructure:"format"`
	// FASTQ ends are clipped back to this Phred quality; 0 disables
	MinQuality int `mapstructure:"min-quality"`
	// clipped reads shorter than this are dropped
	MinLength int `mapstructure:"min-length"`
	// quality strings use the Phred+64 encoding
	Phred64 bool `mapstructure:"phred64"`
}

// OutputConfig names the result files. Empty names are not written.
type OutputConfig struct {
	Consensus  string `mapstructure:"consensus"`
	Singletons string `mapstructure:"singletons"`
	Counts     string `mapstructure:"counts"`
	Branches   string `mapstructure:"branches"`
	DOT        string `mapstructure:"dot"`
}

// Config is the root settings struct.
type Config struct {
	Overlap   OverlapConfig           `mapstructure:"overlap"`
	Graph     GraphConfig             `mapstructure:"graph"`
	Consensus ConsensusConfig         `mapstructure:"consensus"`
	Alignment alignment.ScoringMatrix `mapstructure:"alignment"`
	Input     InputConfig             `mapstructure:"input"`
	Output    OutputConfig            `mapstructure:"output"`
	LogLevel  string                  `mapstructure:"log-level"`
	Parallel  bool                    `mapstructure:"parallel"`
}

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	op := kmer.DefaultParams()
	v.SetDefault("overlap.window", op.Window)
	v.SetDefault("overlap.word", op.Word)
	v.SetDefault("overlap.threshold", op.Threshold)
	v.SetDefault("overlap.inclusion-threshold", op.InclusionThreshold)
	v.SetDefault("overlap.max-mismatch-rate", op.MaxMismatchRate)

	v.SetDefault("graph.max-depth", 0)
	v.SetDefault("graph.tree", "")
	v.SetDefault("graph.containment-identity", 0.0)

	cp := consensus.DefaultParams()
	v.SetDefault("consensus.mode", cp.Mode.String())
	v.SetDefault("consensus.window", cp.Window)
	v.SetDefault("consensus.type-i-factor", cp.TypeIFactor)
	v.SetDefault("consensus.type-ii-factor", cp.TypeIIFactor)
	v.SetDefault("consensus.consecutive", cp.Consecutive)
	v.SetDefault("consensus.slack", cp.Slack)

	sc := alignment.DefaultDNA()
	v.SetDefault("alignment.match", sc.MatchScore)
	v.SetDefault("alignment.mismatch", sc.MismatchPenalty)
	v.SetDefault("alignment.gap-open", sc.GapOpenPenalty)
	v.SetDefault("alignment.gap-extend", sc.GapExtendPenalty)

	v.SetDefault("input.format", "auto")
	v.SetDefault("input.min-quality", 0)
	v.SetDefault("input.min-length", 0)
	v.SetDefault("input.phred64", false)

	v.SetDefault("output.consensus", "")
	v.SetDefault("output.singletons", "")
	v.SetDefault("output.counts", "")
	v.SetDefault("output.branches", "")
	v.SetDefault("output.dot", "")

	v.SetDefault("log-level", "info")
	v.SetDefault("parallel", true)
}

// New creates a Viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional settings file into v and unmarshals the result.
func Load(v *viper.Viper, settingsFile string) (*Config, error) {
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading settings %s: %w", settingsFile, err)
		}
		log.Debugf("using settings file %s", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.kmerParams().Validate(); err != nil {
		return fmt.Errorf("overlap: %w", err)
	}
	if c.Graph.MaxDepth < 0 {
		return fmt.Errorf("graph: max-depth must not be negative")
	}
	if c.Graph.ContainmentIdentity < 0 || c.Graph.ContainmentIdentity > 1 {
		return fmt.Errorf("graph: containment-identity must be in [0, 1]")
	}
	cp, err := c.consensusParams()
	if err != nil {
		return fmt.Errorf("consensus: %w", err)
	}
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("consensus: %w", err)
	}
	if err := c.Alignment.Validate(); err != nil {
		return fmt.Errorf("alignment: %w", err)
	}
	switch strings.ToLower(c.Input.Format) {
	case "auto", "fasta", "fastq":
	default:
		return fmt.Errorf("input: unknown format %q", c.Input.Format)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func (c *Config) kmerParams() kmer.Params {
	return kmer.Params{
		Window:             c.Overlap.Window,
		Word:               c.Overlap.Word,
		Threshold:          c.Overlap.Threshold,
		InclusionThreshold: c.Overlap.InclusionThreshold,
		MaxMismatchRate:    c.Overlap.MaxMismatchRate,
	}
}

func (c *Config) consensusParams() (consensus.Params, error) {
	mode, err := consensus.ParseMode(c.Consensus.Mode)
	if err != nil {
		return consensus.Params{}, err
	}
	return consensus.Params{
		Mode:         mode,
		Window:       c.Consensus.Window,
		TypeIFactor:  c.Consensus.TypeIFactor,
		TypeIIFactor: c.Consensus.TypeIIFactor,
		Consecutive:  c.Consensus.Consecutive,
		Slack:        c.Consensus.Slack,
		Parallel:     c.Parallel,
	}, nil
}

// Options converts the settings into assembly options. The external tree
// named by Graph.Tree is loaded by the caller.
func (c *Config) Options() (assembly.Options, error) {
	cp, err := c.consensusParams()
	if err != nil {
		return assembly.Options{}, err
	}
	scoring := c.Alignment
	return assembly.Options{
		Overlap:             c.kmerParams(),
		Consensus:           cp,
		Scoring:             &scoring,
		MaxDepth:            c.Graph.MaxDepth,
		ContainmentIdentity: c.Graph.ContainmentIdentity,
	}, nil
}

// ApplyLogLevel sets the logrus level from LogLevel.
func (c *Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, keeping %s", c.LogLevel, log.GetLevel())
		return
	}
	log.SetLevel(level)
}
