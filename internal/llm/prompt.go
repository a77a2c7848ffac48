package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert electronics customer service representative with deep technical knowledge.
You specialize in diagnosing and resolving issues with consumer electronics, smartphones, laptops, gaming hardware, and smart home devices.

Your responses should be:
- Technically accurate and specific
- Empathetic and understanding
- Actionable with clear next steps
- Professional yet approachable
- Focused on customer satisfaction

Always prioritize customer safety and provide appropriate warnings for potentially dangerous situations.`

const userPromptTemplate = `
Customer Query: %q

Technical Context: %s

Please provide a comprehensive, step-by-step customer service response that follows this structure:

1. **Opening**: Start with "Thank you for contacting us about this issue. I'm here to help you resolve this problem with your device. Let me provide you with some specific guidance based on the information you've shared."

2. **Urgency Assessment**: If urgent, add "Given the urgency of this issue, I recommend we address this immediately."

3. **Systematic Approach**: Include "Let's work through some systematic troubleshooting steps to identify and resolve this issue."

4. **Step-by-Step Instructions**: Provide 2-3 specific, actionable steps with:
   - Clear instructions (e.g., "First, please perform a soft reset by holding down the power button for 10-15 seconds")
   - Explanation of what each step does
   - What to expect after each step

5. **Professional Tone**: Maintain empathy while being technically accurate
6. **Next Steps**: Guide them on what to do if the issue persists%s

Make the response detailed, helpful, and easy to follow for non-technical users.
`

func buildSystemPrompt(language string) string {
	if isEnglish(language) {
		return systemPrompt
	}
	return systemPrompt + "\n\nRespond in " + LanguageName(language) + "."
}

func buildUserPrompt(req Request) string {
	instruction := ""
	if !isEnglish(req.Language) {
		instruction = " Please respond in " + LanguageName(req.Language) + "."
	}
	return fmt.Sprintf(userPromptTemplate, req.Query, technicalContext(req), instruction)
}

func technicalContext(req Request) string {
	var parts []string
	if len(req.Components) > 0 {
		labels := make([]string, 0, len(req.Components))
		severities := make([]string, 0, len(req.Components))
		for _, c := range req.Components {
			labels = append(labels, c.Label)
			severities = append(severities, c.Severity)
		}
		parts = append(parts,
			"Detected components: "+strings.Join(labels, ", "),
			"Severity levels: "+strings.Join(severities, ", "),
		)
	}
	parts = append(parts,
		"Customer sentiment: "+req.Sentiment,
		"Urgency level: "+req.Urgency,
	)
	return strings.Join(parts, " | ")
}

func isEnglish(code string) bool {
	return code == "" || code == "en"
}
