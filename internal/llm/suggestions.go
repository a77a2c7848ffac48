package llm

import "secrm-eiga.dev/web/internal/pipeline"

const maxSuggestions = 5

// Suggestions derives follow-up actions from the recognised components and the
// dominant sentiment. At most five are returned.
func Suggestions(components []pipeline.Component, sentiment string) []string {
	var out []string
	for _, c := range components {
		switch c.Label {
		case "battery":
			if c.Severity == "high" {
				out = append(out, "🔋 Schedule immediate battery replacement - high degradation detected")
			} else {
				out = append(out, "🔋 Optimize charging habits and run battery calibration")
			}
		case "overheating":
			if c.Severity == "critical" {
				out = append(out, "🌡️ URGENT: Stop using device immediately - thermal protection needed")
			} else {
				out = append(out, "🌡️ Improve ventilation and reduce processor load")
			}
		case "performance":
			out = append(out, "⚡ Clear cache, update software, and optimize system settings")
		case "display":
			out = append(out, "📱 Test display components and check for hardware issues")
		case "network":
			out = append(out, "📶 Troubleshoot connectivity and update network drivers")
		case "audio":
			out = append(out, "🔊 Test audio components and update sound drivers")
		}
	}

	switch sentiment {
	case "negative":
		out = append(out, "💬 Prioritize this customer for immediate follow-up")
	case "positive":
		out = append(out, "⭐ Excellent opportunity for positive review and referral")
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
