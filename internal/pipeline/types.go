package pipeline

// AnalysisResult is the /api/pipeline response body. Every field is optional on
// the wire; display defaults are applied by the render package, never here.
type AnalysisResult struct {
	AnalysisID              string             `json:"analysis_id,omitempty"`
	Components              []Component        `json:"components"`
	BusinessRecommendations []Recommendation   `json:"business_recommendations"`
	SentimentBreakdown      map[string]float64 `json:"sentiment_breakdown"`
	CustomerResponse        string             `json:"customer_response,omitempty"`
	UrgencyLevel            string             `json:"urgency_level,omitempty"`
	ComponentCount          int                `json:"component_count"`
	RiskAssessment          *RiskAssessment    `json:"risk_assessment,omitempty"`
	FinalAnalysis           string             `json:"final_analysis,omitempty"`
	LLMMetadata             *LLMMetadata       `json:"llm_metadata,omitempty"`
	IntelligentSuggestions  []string           `json:"intelligent_suggestions,omitempty"`

	SECRM *SECRMAnalysis `json:"secrm_analysis,omitempty"`
	EIGA  *EIGAAnalysis  `json:"eiga_analysis,omitempty"`
}

// Component is one recognised hardware or software area.
type Component struct {
	Label      string   `json:"label"`
	Severity   string   `json:"severity"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Category   string   `json:"category,omitempty"`
}

// Recommendation is one business or technical follow-up.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// RiskAssessment describes the churn exposure for a given urgency.
type RiskAssessment struct {
	ChurnRisk    string `json:"churn_risk,omitempty"`
	Action       string `json:"action,omitempty"`
	Priority     string `json:"priority,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
}

// LLMMetadata describes the generator that produced the customer response.
type LLMMetadata struct {
	ModelUsed      string  `json:"model_used,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	TokensUsed     int64   `json:"tokens_used"`
	GenerationTime float64 `json:"generation_time"`
}

// SECRMAnalysis is the component recognition stage output.
type SECRMAnalysis struct {
	Components        []Component        `json:"components"`
	Sentiment         map[string]float64 `json:"sentiment"`
	Urgency           string             `json:"urgency"`
	Language          string             `json:"language"`
	OverallConfidence float64            `json:"overall_confidence"`
	TextLength        int                `json:"text_length"`
	WordCount         int                `json:"word_count"`
	AnalysisTimestamp string             `json:"analysis_timestamp"`
}

// EIGAAnalysis is the generation stage output.
type EIGAAnalysis struct {
	CustomerResponse        string             `json:"customer_response"`
	BusinessRecommendations []Recommendation   `json:"business_recommendations"`
	FinalAnalysis           string             `json:"final_analysis"`
	SentimentBreakdown      map[string]float64 `json:"sentiment_breakdown"`
	UrgencyLevel            string             `json:"urgency_level"`
	ComponentCount          int                `json:"component_count"`
	RiskAssessment          RiskAssessment     `json:"risk_assessment"`
}
