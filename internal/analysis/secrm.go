package analysis

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"secrm-eiga.dev/web/internal/pipeline"
)

// Urgency levels produced by SECRM.
const (
	UrgencyUrgent = "urgent"
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
)

type componentRule struct {
	label    string
	severity string
	category string
	triggers []string
}

// Rules are evaluated in this order; ties in confidence keep it.
var componentRules = []componentRule{
	{"battery", "critical", "power", []string{"battery", "charge", "drain", "power", "dies", "dying", "lasts", "lunch", "whole day", "charging", "plugged"}},
	{"overheating", "critical", "thermal", []string{"overheat", "hot", "heat", "thermal", "burning", "warm", "temperature", "throttling"}},
	{"display", "high", "visual", []string{"screen", "display", "pixel", "ghost", "cracked", "broken", "flicker", "dim", "brightness"}},
	{"performance", "high", "processing", []string{"lag", "slow", "freeze", "stutter", "hangs", "unresponsive", "delays", "keyboard", "typing"}},
	{"network", "medium", "connectivity", []string{"wifi", "signal", "lte", "5g", "network", "connection", "internet", "data", "cellular"}},
	{"audio", "medium", "audio", []string{"speaker", "mic", "microphone", "sound", "volume", "audio", "calls", "ringtone"}},
	{"build_quality", "medium", "physical", []string{"packaging", "box", "torn", "opened", "durability", "cheap", "flimsy", "broken", "damaged"}},
	{"software", "high", "software", []string{"update", "software", "app", "crash", "bug", "glitch", "version", "firmware"}},
}

var sentimentOrder = []string{"positive", "negative", "neutral"}

var sentimentKeywords = map[string][]string{
	"positive": {"good", "great", "excellent", "love", "perfect", "amazing", "works", "fine", "happy", "satisfied", "impressed", "recommend", "outstanding", "brilliant"},
	"negative": {"bad", "terrible", "awful", "hate", "disappointed", "frustrated", "angry", "return", "refund", "horrible", "useless", "broken", "defective", "waste"},
	"neutral":  {"okay", "average", "decent", "acceptable", "normal", "standard", "mediocre", "fair", "adequate"},
}

type languageRule struct {
	name  string
	words map[string]struct{}
}

var languageRules = []languageRule{
	{"spanish", wordSet("el", "la", "de", "que", "y", "a", "en", "un", "es", "se", "no", "te", "lo", "le", "da", "su", "por", "son", "con", "para")},
	{"french", wordSet("le", "de", "et", "à", "un", "il", "être", "en", "avoir", "que", "pour", "dans", "ce", "son", "une", "sur", "avec", "ne", "se")},
	{"german", wordSet("der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "für", "ist", "im", "dem", "nicht", "ein", "eine", "als")},
	{"chinese", wordSet("的", "了", "在", "是", "我", "有", "和", "就", "不", "人", "都", "一", "一个", "上", "也", "很", "到", "说", "要", "去")},
	{"japanese", wordSet("の", "に", "は", "を", "た", "が", "で", "て", "と", "し", "れ", "さ", "ある", "いる", "も", "する", "から", "な", "こと", "として")},
}

var languageCodes = map[string]string{
	"english":  "en",
	"spanish":  "es",
	"french":   "fr",
	"german":   "de",
	"chinese":  "zh",
	"japanese": "ja",
}

var (
	urgentWords = []string{"urgent", "emergency", "critical", "immediately", "asap", "broken", "not working", "dangerous", "fire", "explode"}
	returnWords = []string{"return", "refund", "exchange", "replace", "warranty", "lawsuit", "legal", "complaint"}
	safetyWords = []string{"burn", "shock", "danger", "unsafe", "hazard"}
)

// RunSECRM performs component recognition, sentiment scoring, urgency and
// language detection on a review.
func RunSECRM(text string, now time.Time) pipeline.SECRMAnalysis {
	components := RecognizeComponents(text)
	return pipeline.SECRMAnalysis{
		Components:        components,
		Sentiment:         ExtractSentiment(text),
		Urgency:           CalculateUrgency(text, components),
		Language:          DetectLanguage(text),
		OverallConfidence: OverallConfidence(components, len([]rune(text))),
		TextLength:        len([]rune(text)),
		WordCount:         len(strings.Fields(text)),
		AnalysisTimestamp: now.Format(time.RFC3339Nano),
	}
}

// RecognizeComponents matches trigger substrings and returns the hit
// components sorted by confidence, highest first.
func RecognizeComponents(text string) []pipeline.Component {
	lowered := strings.ToLower(text)
	components := []pipeline.Component{}
	for _, rule := range componentRules {
		var hits []string
		for _, trigger := range rule.triggers {
			if strings.Contains(lowered, trigger) {
				hits = append(hits, trigger)
			}
		}
		if len(hits) == 0 {
			continue
		}

		confidence := 0.3 + float64(len(hits))*0.15
		for _, hit := range hits {
			if len(strings.Fields(hit)) > 1 {
				confidence += 0.1
			}
		}
		evidence := hits
		if len(evidence) > 3 {
			evidence = evidence[:3]
		}
		components = append(components, pipeline.Component{
			Label:      rule.label,
			Severity:   rule.severity,
			Category:   rule.category,
			Confidence: round2(math.Min(0.95, confidence)),
			Evidence:   evidence,
		})
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Confidence > components[j].Confidence
	})
	return components
}

// ExtractSentiment counts sentiment keywords and normalises the counts into
// ratios rounded to two decimals. All zeros when nothing matches.
func ExtractSentiment(text string) map[string]float64 {
	lowered := strings.ToLower(text)
	counts := make(map[string]int, len(sentimentOrder))
	total := 0
	for _, label := range sentimentOrder {
		for _, kw := range sentimentKeywords[label] {
			if strings.Contains(lowered, kw) {
				counts[label]++
				total++
			}
		}
	}
	scores := make(map[string]float64, len(sentimentOrder))
	for _, label := range sentimentOrder {
		if total == 0 {
			scores[label] = 0
			continue
		}
		scores[label] = round2(float64(counts[label]) / float64(total))
	}
	return scores
}

// DominantSentiment returns the highest scoring label, preferring
// positive, then negative, then neutral on ties.
func DominantSentiment(scores map[string]float64) (string, float64) {
	if len(scores) == 0 {
		return "neutral", 0
	}
	best, bestScore := "", -1.0
	for _, label := range sentimentOrder {
		if v, ok := scores[label]; ok && v > bestScore {
			best, bestScore = label, v
		}
	}
	if best == "" {
		return "neutral", 0
	}
	return best, bestScore
}

// DetectLanguage names the language whose function words dominate the text.
// A language must account for at least a fifth of the words so that stray
// short words ("a", "no") do not flip English reviews.
func DetectLanguage(text string) string {
	if lang := detectScript(text); lang != "" {
		return lang
	}
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return "english"
	}
	best, bestScore := "", 0
	for _, rule := range languageRules {
		score := 0
		for _, w := range words {
			if _, ok := rule.words[strings.Trim(w, ".,!?;:\"'()")]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = rule.name, score
		}
	}
	if best == "" || bestScore*5 < len(words) {
		return "english"
	}
	return best
}

// LanguageCode maps a detected language name to its ISO 639-1 code.
func LanguageCode(name string) string {
	if code, ok := languageCodes[name]; ok {
		return code
	}
	return "en"
}

// CalculateUrgency ranks safety and urgent wording above return intent, and
// return intent above critical components.
func CalculateUrgency(text string, components []pipeline.Component) string {
	lowered := strings.ToLower(text)
	switch {
	case containsAny(lowered, safetyWords), containsAny(lowered, urgentWords):
		return UrgencyUrgent
	case containsAny(lowered, returnWords):
		return UrgencyHigh
	}
	for _, c := range components {
		if c.Severity == "critical" {
			return UrgencyHigh
		}
	}
	return UrgencyMedium
}

// OverallConfidence blends the mean component confidence with a length factor
// saturating at 200 characters.
func OverallConfidence(components []pipeline.Component, textLength int) float64 {
	if len(components) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range components {
		sum += c.Confidence
	}
	avg := sum / float64(len(components))
	lengthFactor := math.Min(1, float64(textLength)/200)
	return round2(avg*0.7 + lengthFactor*0.3)
}

// detectScript recognises CJK text, which is not whitespace separated.
func detectScript(text string) string {
	han := false
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			return "japanese"
		case unicode.Is(unicode.Han, r):
			han = true
		}
	}
	if han {
		return "chinese"
	}
	return ""
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
