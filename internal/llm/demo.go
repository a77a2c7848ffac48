package llm

import (
	"context"
	"time"
)

const (
	demoModel  = "demo-mode"
	demoOpener = "Thank you for contacting us about this issue. I'm here to help you resolve this problem with your device. Let me provide you with some specific guidance based on the information you've shared."
	demoBridge = " Let's work through some systematic troubleshooting steps to identify and resolve this issue."
)

var troubleshootingSteps = map[string]string{
	"battery":     "First, please perform a soft reset by holding down the power button for 10-15 seconds until the device restarts. This clears temporary system glitches without affecting your data. Next, check your battery usage in the settings menu to identify any apps consuming excessive power. Finally, ensure you're using the original charger and cable, as third-party accessories can cause charging issues. If the problem persists after these steps, we may need to run a battery diagnostic test.",
	"overheating": "First, immediately turn off your device and let it cool down for at least 15 minutes in a well-ventilated area. Once cooled, restart the device and check for any pending software updates in the settings menu, as outdated firmware can cause thermal issues. Next, close all unnecessary applications and avoid using the device while charging. If overheating continues, please contact our technical support team immediately as this could indicate a hardware issue that needs professional attention.",
	"performance": "First, please perform a soft reset by holding down the power button for 10-15 seconds until the device restarts. This clears temporary system glitches and frees up memory. Next, go to your device settings and clear the cache for recently used applications. Finally, check for any pending software updates in the settings menu, as outdated firmware can often cause performance problems. If the device is still running slowly after these steps, we can run deeper diagnostics to identify the specific cause.",
	"display":     "First, please perform a soft reset by holding down the power button for 10-15 seconds until the device restarts. This can resolve temporary display glitches. Next, check your display settings and adjust the brightness and resolution to see if that improves the issue. Finally, test the display by opening different applications to see if the problem is consistent across all screens. If you notice dead pixels or persistent display issues, we may need to arrange for a professional service appointment.",
	"network":     "First, please restart your device and your router by unplugging the router for 30 seconds, then plugging it back in. Next, check your network settings and ensure you're connected to the correct Wi-Fi network. Try forgetting the network and reconnecting with the correct password. Finally, check for any pending software updates in the settings menu, as outdated network drivers can cause connectivity issues. If the problem persists, we may need to update your device's network drivers.",
	"audio":       "First, please perform a soft reset by holding down the power button for 10-15 seconds until the device restarts. This can resolve temporary audio glitches. Next, check your audio settings and ensure the volume is turned up and not muted. Try using different audio outputs (speakers, headphones) to isolate the issue. Finally, check for any pending software updates in the settings menu, as outdated audio drivers can cause sound problems. If the issue continues, we may need to run audio diagnostics to identify the specific cause.",
}

const genericSteps = "First, please perform a soft reset by holding down the power button for 10-15 seconds until the device restarts. This clears temporary system glitches without affecting your data. Next, check for any pending software updates in the settings menu, as outdated firmware can often cause various issues. Finally, if the problem persists, please contact our technical support team for further assistance."

// Demo produces canned troubleshooting replies without any network access.
type Demo struct{}

// Name identifies the provider in metrics.
func (Demo) Name() string { return "demo" }

// Generate builds the reply from the highest-confidence component.
func (Demo) Generate(_ context.Context, req Request) (Response, error) {
	primary := "general"
	if len(req.Components) > 0 {
		primary = req.Components[0].Label
	}

	text := demoOpener
	switch req.Urgency {
	case "high":
		text += " Given the urgency of this issue, I recommend we address this immediately."
	case "urgent", "critical":
		text += " This appears to be a critical issue that requires immediate attention for your safety and device protection."
	}
	text += demoBridge + " " + TroubleshootingSteps(primary)

	return Response{
		Text:           text,
		Confidence:     0.85,
		Model:          demoModel,
		GenerationTime: 100 * time.Millisecond,
	}, nil
}

// TroubleshootingSteps returns the canned step list for a component label.
func TroubleshootingSteps(component string) string {
	if steps, ok := troubleshootingSteps[component]; ok {
		return steps
	}
	return genericSteps
}
