package analysis

import (
	"fmt"
	"strings"

	"secrm-eiga.dev/web/internal/pipeline"
)

var responseTemplates = map[string]map[string]string{
	"battery": {
		"critical": "I understand your frustration with the battery life. This is a critical issue that needs immediate attention. Let me help you resolve this quickly.",
		"high":     "Battery performance issues can be very concerning. I'll make sure we get this sorted out for you right away.",
		"medium":   "I see you're experiencing some battery concerns. Let me provide some solutions to help improve your device's performance.",
	},
	"overheating": {
		"critical": "Device overheating is a serious safety concern. I'm escalating this to our technical team immediately for urgent resolution.",
		"high":     "Overheating issues can affect device performance and safety. Let me connect you with our technical specialists.",
		"medium":   "I understand your concern about the device temperature. Let me provide some immediate solutions.",
	},
	"performance": {
		"critical": "Performance issues can be incredibly frustrating, especially when you need your device for work. I'll prioritize this case.",
		"high":     "I hear your frustration with the performance problems. Let me get our technical team involved to resolve this quickly.",
		"medium":   "Performance issues can be annoying. Let me help you troubleshoot and improve your device's speed.",
	},
	"display": {
		"critical": "Display issues can severely impact your user experience. I'm flagging this as a high-priority case for immediate resolution.",
		"high":     "I understand how important a working display is. Let me get this resolved for you as quickly as possible.",
		"medium":   "Display problems can be frustrating. Let me provide some solutions to get your screen working properly.",
	},
	"build_quality": {
		"critical": "I sincerely apologize for the packaging and quality issues. This is not the experience we want you to have. Let me make this right immediately.",
		"high":     "I'm sorry to hear about the quality concerns. Let me address this promptly and ensure you receive a replacement.",
		"medium":   "I understand your concerns about the product quality. Let me help resolve this for you.",
	},
}

const (
	noComponentsResponse = "Thank you for your feedback. I'm here to help with any questions or concerns you may have about your product."
	genericResponse      = "I understand your concerns and I'm here to help resolve any issues you're experiencing."
)

// businessImpact is keyed by risk level.
var businessImpact = map[string]pipeline.RiskAssessment{
	"critical": {ChurnRisk: "Very High (80-90%)", Action: "Immediate escalation to senior support", Priority: "P0 - Emergency", ResponseTime: "< 2 hours"},
	"high":     {ChurnRisk: "High (60-70%)", Action: "Priority support queue", Priority: "P1 - High", ResponseTime: "< 4 hours"},
	"medium":   {ChurnRisk: "Medium (30-40%)", Action: "Standard support process", Priority: "P2 - Medium", ResponseTime: "< 24 hours"},
	"low":      {ChurnRisk: "Low (10-20%)", Action: "Self-service resources", Priority: "P3 - Low", ResponseTime: "< 48 hours"},
}

// technicalRecommendations lists remediation steps, primary first.
var technicalRecommendations = map[string][]string{
	"battery": {
		"Run battery diagnostics to identify power consumption patterns",
		"Check for background apps draining battery",
		"Verify charging cable and adapter compatibility",
		"Consider battery replacement if diagnostics show degradation",
		"Provide power management optimization tips",
	},
	"overheating": {
		"Check for thermal throttling in system logs",
		"Verify proper ventilation and cooling",
		"Scan for malware or resource-intensive processes",
		"Update thermal management firmware",
		"Consider thermal paste replacement for severe cases",
	},
	"performance": {
		"Run system performance diagnostics",
		"Check for memory leaks or resource conflicts",
		"Update device drivers and firmware",
		"Optimize system settings for better performance",
		"Consider hardware upgrade if software optimization insufficient",
	},
	"display": {
		"Run display diagnostics and pixel tests",
		"Check for loose connections or cable issues",
		"Update graphics drivers",
		"Test with external display to isolate issue",
		"Arrange screen replacement if hardware fault confirmed",
	},
	"build_quality": {
		"Document packaging damage with photos",
		"Verify product authenticity and source",
		"Arrange immediate replacement with expedited shipping",
		"Provide quality assurance feedback to fulfillment team",
		"Offer compensation for inconvenience",
	},
}

// RunEIGA turns a SECRM analysis into a customer reply, business
// recommendations and a summary.
func RunEIGA(secrm pipeline.SECRMAnalysis) pipeline.EIGAAnalysis {
	urgency := secrm.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	sentiment := secrm.Sentiment
	if sentiment == nil {
		sentiment = map[string]float64{}
	}
	components := secrm.Components
	if components == nil {
		components = []pipeline.Component{}
	}
	return pipeline.EIGAAnalysis{
		CustomerResponse:        CustomerResponse(components, sentiment, urgency),
		BusinessRecommendations: BusinessRecommendations(components, urgency),
		FinalAnalysis:           FinalAnalysis(components, sentiment, urgency),
		SentimentBreakdown:      sentiment,
		UrgencyLevel:            urgency,
		ComponentCount:          len(components),
		RiskAssessment:          RiskFor(urgency),
	}
}

// CustomerResponse picks a template for the primary component. A critical
// component wins outright; otherwise the last high, then the last medium
// component in confidence order is primary.
func CustomerResponse(components []pipeline.Component, sentiment map[string]float64, urgency string) string {
	if len(components) == 0 {
		return noComponentsResponse
	}

	highest, primary := "low", ""
	for _, c := range components {
		if c.Severity == "critical" {
			highest, primary = "critical", c.Label
			break
		}
		if c.Severity == "high" {
			highest, primary = "high", c.Label
		} else if c.Severity == "medium" && highest != "high" {
			highest, primary = "medium", c.Label
		}
	}

	response := genericResponse
	if templates, ok := responseTemplates[primary]; ok {
		if t, ok := templates[highest]; ok {
			response = t
		} else {
			response = templates["medium"]
		}
	}

	switch urgency {
	case UrgencyUrgent:
		response += " I'm treating this as an urgent matter and will ensure you receive immediate assistance."
	case UrgencyHigh:
		response += " I'm prioritizing your case to ensure a quick resolution."
	}
	if sentiment["negative"] > 0.5 {
		response += " I sincerely apologize for any frustration this has caused."
	}
	return response
}

// RiskLevel derives the business risk level from urgency and severities.
func RiskLevel(components []pipeline.Component, urgency string) string {
	switch urgency {
	case UrgencyUrgent:
		return "critical"
	case UrgencyHigh:
		return "high"
	}
	for _, c := range components {
		if c.Severity == "critical" {
			return "high"
		}
	}
	for _, c := range components {
		if c.Severity == "high" {
			return "medium"
		}
	}
	return "low"
}

// BusinessRecommendations lists the impact assessment, one technical action
// per known component and a retention action for high-risk customers.
func BusinessRecommendations(components []pipeline.Component, urgency string) []pipeline.Recommendation {
	risk := RiskLevel(components, urgency)
	impact := businessImpact[risk]

	recs := []pipeline.Recommendation{{
		Type:        "Business Impact",
		Title:       "Customer Risk Assessment: " + impact.ChurnRisk,
		Description: fmt.Sprintf("Priority: %s | Response Time: %s", impact.Priority, impact.ResponseTime),
		Action:      impact.Action,
	}}

	for _, c := range components {
		steps, ok := technicalRecommendations[c.Label]
		if !ok {
			continue
		}
		severity := c.Severity
		if severity == "" {
			severity = "unknown"
		}
		recs = append(recs, pipeline.Recommendation{
			Type:        "Technical Action",
			Title:       fmt.Sprintf("Address %s Issues", titleCase(strings.ReplaceAll(c.Label, "_", " "))),
			Description: fmt.Sprintf("Severity: %s | Confidence: %.0f%%", titleCase(severity), c.Confidence*100),
			Action:      steps[0],
		})
	}

	if risk == "critical" || risk == "high" {
		recs = append(recs, pipeline.Recommendation{
			Type:        "Retention",
			Title:       "Customer Retention Strategy",
			Description: "High churn risk detected - immediate retention actions required",
			Action:      "Offer expedited replacement, compensation, or upgrade path",
		})
	}
	return recs
}

// FinalAnalysis summarises detected issues, dominant sentiment and urgency.
func FinalAnalysis(components []pipeline.Component, sentiment map[string]float64, urgency string) string {
	var b strings.Builder
	if len(components) > 0 {
		parts := make([]string, 0, len(components))
		for _, c := range components {
			severity := c.Severity
			if severity == "" {
				severity = "unknown"
			}
			parts = append(parts, fmt.Sprintf("%s issue (%s, %.0f%% confidence)", c.Label, severity, c.Confidence*100))
		}
		b.WriteString("Detected issues: " + strings.Join(parts, ", ") + ". ")
	} else {
		b.WriteString("No critical issues detected. ")
	}

	label, score := DominantSentiment(sentiment)
	fmt.Fprintf(&b, "Customer sentiment: %s (%.0f%%). ", label, score*100)
	b.WriteString("Urgency level: " + titleCase(urgency) + ".")
	return b.String()
}

// RiskFor looks up the risk assessment for an urgency level. Levels without
// an entry, including "urgent", report the medium assessment.
func RiskFor(urgency string) pipeline.RiskAssessment {
	if r, ok := businessImpact[urgency]; ok {
		return r
	}
	return businessImpact["medium"]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
