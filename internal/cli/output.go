package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/medtriage/internal/model"
	"github.com/Skufu/medtriage/internal/triage"
)

type diseaseRow struct {
	Name     triage.Disease  `json:"name" yaml:"name"`
	Strategy triage.Strategy `json:"strategy" yaml:"strategy"`
	Fields   []string        `json:"fields" yaml:"fields"`
}

func display(w io.Writer, v any, format string, human func()) error {
	switch format {
	case "json":
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
	case "yaml":
		output, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(output))
	default:
		human()
	}
	return nil
}

func displayResult(w io.Writer, res triage.Result, format string) error {
	return display(w, res, format, func() {
		bold := color.New(color.Bold)
		verdictColor := color.New(color.FgGreen, color.Bold)
		if res.Verdict == triage.Risky {
			verdictColor = color.New(color.FgRed, color.Bold)
		}

		fmt.Fprintln(w)
		bold.Fprintf(w, "%s: ", strings.ToUpper(string(res.Disease)))
		verdictColor.Fprintln(w, res.Verdict)

		strategy := string(res.Strategy)
		if res.Probability != nil {
			strategy += fmt.Sprintf(", p=%s", strconv.FormatFloat(*res.Probability, 'f', 3, 64))
		}
		if res.RuleClamped {
			strategy += ", rule override"
		}
		fmt.Fprintf(w, "   via %s\n\n", color.HiBlackString(strategy))

		if res.Suggestion.Recommendation != "" {
			fmt.Fprintf(w, "   %s\n\n", res.Suggestion.Recommendation)
		}
		printList(w, color.New(color.FgCyan, color.Bold), "CLINICAL", res.Suggestion.Clinical)
		printList(w, color.New(color.FgGreen, color.Bold), "HERBAL", res.Suggestion.Herbal)

		fmt.Fprintln(w, strings.Repeat("─", 60))
		fmt.Fprintln(w, color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
	})
}

func printList(w io.Writer, c *color.Color, title string, items []string) {
	if len(items) == 0 {
		return
	}
	c.Fprintln(w, title+":")
	for i, item := range items {
		fmt.Fprintf(w, "   %d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}

func displayStatuses(w io.Writer, statuses []model.Status, format string) error {
	if statuses == nil {
		statuses = []model.Status{}
	}
	return display(w, statuses, format, func() {
		for _, s := range statuses {
			state := color.GreenString(string(s.State))
			if s.State != model.StateLoaded {
				state = color.RedString(string(s.State))
			}
			fmt.Fprintf(w, "%-10s %s", s.Name, state)
			if s.Reason != "" {
				fmt.Fprintf(w, "  %s", color.HiBlackString(s.Reason))
			}
			fmt.Fprintln(w)
		}
	})
}

func displayDiseases(w io.Writer, rows []diseaseRow, format string) error {
	return display(w, rows, format, func() {
		for _, r := range rows {
			fmt.Fprintf(w, "%-10s %-6s %s\n", r.Name, color.CyanString(string(r.Strategy)), strings.Join(r.Fields, ", "))
		}
	})
}
