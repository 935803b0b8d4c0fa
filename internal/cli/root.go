// Package cli implements the triage command line tool.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/triage"
)

type options struct {
	modelDir    string
	suggestions string
	modelRoutes []string
	output      string
	verbose     bool
}

// NewRootCmd builds the triage command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "triage",
		Short: "Rule and model based disease risk triage",
		Long: `triage classifies a bundle of clinical inputs for one disease as Normal
or Risky and prints the matching clinical and herbal suggestions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.modelDir, "model-dir", "models", "Directory holding <disease>_{imputer,scaler,model}.json artifacts")
	flags.StringVar(&opts.suggestions, "suggestions", "", "YAML suggestion catalog replacing the built-in one")
	flags.StringSliceVar(&opts.modelRoutes, "model-route", nil, "Diseases to classify with their fitted model (heart, kidney, liver)")
	flags.StringVarP(&opts.output, "output", "o", "human", "Output format (human, json, yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log artifact loading")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newModelsCmd(opts),
		newDiseasesCmd(opts),
	)
	return rootCmd
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) registry(cmd *cobra.Command) *model.Registry {
	return model.LoadDir(o.modelDir, triage.ModelSchemas(), o.logger(cmd))
}

func (o *options) engine(cmd *cobra.Command) (*triage.Engine, error) {
	catalog := triage.DefaultCatalog()
	if o.suggestions != "" {
		c, err := triage.LoadCatalogFile(o.suggestions)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	routed := make([]triage.Disease, 0, len(o.modelRoutes))
	for _, name := range o.modelRoutes {
		d, err := triage.ParseDisease(name)
		if err != nil {
			return nil, fmt.Errorf("--model-route: %w", err)
		}
		routed = append(routed, d)
	}

	return triage.NewEngine(o.registry(cmd), catalog, routed...)
}

func (o *options) format() (string, error) {
	switch f := strings.ToLower(o.output); f {
	case "human", "json", "yaml":
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", o.output)
	}
}
