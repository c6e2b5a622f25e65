// Package cli holds the cobra commands of the estflow binary.
package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/estflow-go/internal/config"
	"github.com/aria-lang/estflow-go/pkg/estflow"
)

// NewRootCommand builds the command tree around its own Viper instance.
func NewRootCommand() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:   "estflow",
		Short: "Assemble expressed sequence tags into consensus contigs",
		Long: `Cluster and assemble EST fragments. Fragments are linked through a
similarity spanning tree, laid out by their best left and right overlaps,
and folded into per-root consensus sequences, optionally reporting
alternative splicing branches.`,
		Version:       estflow.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("settings", "s", "", "YAML settings file")
	root.PersistentFlags().BoolP("verbose", "v", false, "log debug output")
	root.PersistentFlags().Bool("serial", false, "disable per-root parallelism")

	root.AddCommand(
		newAssembleCommand(v),
		newOverlapCommand(v),
		newAlignCommand(v),
		newStatsCommand(v),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// loadConfig reads the settings file named on the command line into v and
// applies the persistent flags.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	settings, _ := cmd.Flags().GetString("settings")
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		v.Set("log-level", "debug")
	}
	if serial, _ := cmd.Flags().GetBool("serial"); serial {
		v.Set("parallel", false)
	}
	cfg, err := config.Load(v, settings)
	if err != nil {
		return nil, err
	}
	cfg.ApplyLogLevel()
	return cfg, nil
}

// bind attaches flags to Viper keys. Unknown flag names are a programming
// error.
func bind(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			log.Panicf("no flag %q on %s", flag, cmd.Name())
		}
		if err := v.BindPFlag(key, f); err != nil {
			log.Panicf("binding %s: %v", key, err)
		}
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the estflow version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "estflow %s\n", estflow.Version())
		},
	}
}
