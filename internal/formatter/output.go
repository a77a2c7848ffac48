package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/render"
)

// Output formats accepted by Display.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Display writes the analysis result in the requested format. Unknown formats
// fall back to human output.
func Display(w io.Writer, res pipeline.AnalysisResult, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return displayJSON(w, res)
	case FormatYAML:
		return displayYAML(w, res)
	default:
		displayHuman(w, res)
	}
	return nil
}

func displayJSON(w io.Writer, res pipeline.AnalysisResult) error {
	output, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// displayYAML round-trips through JSON so keys keep their wire names.
func displayYAML(w io.Writer, res pipeline.AnalysisResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	output, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(output)
	return err
}

func displayHuman(w io.Writer, res pipeline.AnalysisResult) {
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	view := render.BuildResultView(res)
	fmt.Fprintln(w)

	urgencyColor(view.Urgency).Fprintf(w, "🚨 URGENCY: %s\n", view.Urgency)
	fmt.Fprintf(w, "   Components: %d   Churn risk: %s\n\n", view.ComponentCount, view.ChurnRisk)

	yellow.Fprintln(w, "🔧 COMPONENTS:")
	if len(view.Components) == 0 {
		fmt.Fprintf(w, "   %s\n\n", view.ComponentsEmpty)
	}
	for i, c := range view.Components {
		fmt.Fprintf(w, "   %d. %s %s (%s, %s)\n", i+1, severityIcon(c.Severity.Text), c.Label, c.Severity.Text, c.Confidence)
		if c.Evidence != "" {
			fmt.Fprintf(w, "      Evidence: %s\n", color.YellowString(c.Evidence))
		}
		fmt.Fprintln(w)
	}

	if len(view.Sentiment) > 0 {
		cyan.Fprintln(w, "📊 SENTIMENT:")
		parts := make([]string, 0, len(view.Sentiment))
		for _, b := range view.Sentiment {
			parts = append(parts, b.Text)
		}
		fmt.Fprintf(w, "   %s\n\n", strings.Join(parts, "  "))
	}

	green.Fprintln(w, "💬 CUSTOMER RESPONSE:")
	response := strings.TrimSpace(res.CustomerResponse)
	if response == "" {
		response = render.NoResponse
	}
	fmt.Fprintln(w, wrapText(response, 80, "   "))
	fmt.Fprintln(w)

	cyan.Fprintln(w, "💡 RECOMMENDATIONS:")
	if len(view.Recommendations) == 0 {
		fmt.Fprintf(w, "   %s\n\n", view.RecsEmpty)
	}
	for i, rec := range view.Recommendations {
		fmt.Fprintf(w, "   %d. [%s] %s\n", i+1, rec.Type.Text, rec.Title)
		if rec.Description != "" {
			fmt.Fprintf(w, "      %s\n", rec.Description)
		}
		if rec.Action != "" {
			fmt.Fprintf(w, "      Action: %s\n", color.CyanString(rec.Action))
		}
		fmt.Fprintln(w)
	}

	white.Fprintln(w, "📄 FINAL ANALYSIS:")
	fmt.Fprintln(w, wrapText(view.FinalAnalysis, 80, "   "))
	fmt.Fprintln(w)

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func urgencyColor(urgency string) *color.Color {
	switch strings.ToLower(urgency) {
	case "urgent":
		return color.New(color.FgRed, color.Bold)
	case "high":
		return color.New(color.FgRed)
	case "medium":
		return color.New(color.FgYellow)
	case "low":
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func severityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "🔴"
	case "high":
		return "🟠"
	case "medium":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		current := indent
		for _, word := range words {
			switch {
			case len(current)+len(word)+1 > width && current != indent:
				result.WriteString(current + "\n")
				current = indent + word
			case current == indent:
				current += word
			default:
				current += " " + word
			}
		}
		if current != indent {
			result.WriteString(current + "\n")
		}
	}
	return strings.TrimSuffix(result.String(), "\n")
}
