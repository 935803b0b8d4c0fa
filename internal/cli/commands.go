package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skufu/medtriage/internal/triage"
)

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify DISEASE [FIELD=VALUE...]",
		Short: "Classify one input bundle",
		Long: `Classify one input bundle for a disease.

Examples:
  # Rule-based thyroid check
  triage classify thyroid Age=30 Sex=0 TSH=2.0 T3=1.0 T4=8.0 Thyroxine=0

  # Diabetes through its fitted model, as JSON
  triage classify diabetes Glucose=160 BMI=31.5 Age=50 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			in, err := parseInputs(args[1:])
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			res, err := engine.Classify(args[0], in)
			if err != nil {
				return err
			}
			return displayResult(cmd.OutOrStdout(), res, format)
		},
	}
}

func newModelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Show which model artifacts loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			return displayStatuses(cmd.OutOrStdout(), opts.registry(cmd).Statuses(), format)
		},
	}
}

func newDiseasesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diseases",
		Short: "List diseases, their routing and input fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			engine, err := opts.engine(cmd)
			if err != nil {
				return err
			}
			routes := engine.Routes()
			out := make([]diseaseRow, 0, len(routes))
			for _, d := range triage.Diseases() {
				out = append(out, diseaseRow{
					Name:     d,
					Strategy: routes[d],
					Fields:   triage.FeatureSchema(d),
				})
			}
			return displayDiseases(cmd.OutOrStdout(), out, format)
		},
	}
}

// parseInputs turns FIELD=VALUE arguments into an input bundle. Later
// duplicates are rejected so a typo cannot silently override a value.
func parseInputs(args []string) (triage.Inputs, error) {
	in := make(triage.Inputs, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q, want FIELD=VALUE", arg)
		}
		if _, dup := in[key]; dup {
			return nil, fmt.Errorf("field %q given more than once", key)
		}
		in[key] = value
	}
	return in, nil
}
