// Command phrasego translates whitespace-tokenized sentences read from stdin,
// one per line, and writes one translation per line to stdout.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/phrasego/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "phrasego",
		Short: "Phrase-based statistical machine translation decoder",
		RunE:  runTranslate,
	}

	configPath string
	flags      overrides
)

// overrides are command-line values applied on top of the configuration.
type overrides struct {
	algorithm   string
	phraseTable string
	lm          string
	nbest       int
	distinct    bool
	threads     int
	reportScore bool
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "f", "", "Path to the YAML configuration file")

	f := rootCmd.Flags()
	f.StringVarP(&flags.algorithm, "search-algorithm", "s", "", "Search algorithm (normal, batch, cube-pruning)")
	f.StringVar(&flags.phraseTable, "phrase-table", "", "Phrase table file")
	f.StringVar(&flags.lm, "lm", "", "ARPA language model file")
	f.IntVarP(&flags.nbest, "n-best", "n", 0, "Number of translations to output per sentence")
	f.BoolVar(&flags.distinct, "distinct", false, "Only output distinct n-best translations")
	f.IntVarP(&flags.threads, "threads", "t", 0, "Worker threads (0 = one per CPU)")
	f.BoolVar(&flags.reportScore, "report-score", false, "Prefix the 1-best output with its score")

	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	fs := cmd.Flags()
	if fs.Changed("search-algorithm") {
		cfg.Search.Algorithm = flags.algorithm
	}
	if fs.Changed("phrase-table") {
		cfg.Model.PhraseTable = flags.phraseTable
	}
	if fs.Changed("lm") {
		cfg.Model.LanguageModel = flags.lm
	}
	if fs.Changed("n-best") {
		cfg.NBest.Size = flags.nbest
	}
	if fs.Changed("distinct") {
		cfg.NBest.Distinct = flags.distinct
	}
	if fs.Changed("threads") {
		cfg.Pool.Threads = flags.threads
	}
	if fs.Changed("report-score") {
		cfg.Output.ReportScore = flags.reportScore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Cache.RedisPass = strings.Repeat("*", len(cfg.Cache.RedisPass))
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
