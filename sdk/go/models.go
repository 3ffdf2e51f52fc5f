package emailwriter

// Request is the body of both email endpoints.
type Request struct {
	EmailContent string `json:"emailContent"`
	// Tone is only used by Generate, e.g. "formal" or "friendly".
	Tone string `json:"tone,omitempty"`
	// Language is the target language of the result. Empty or English
	// leaves the result untranslated.
	Language string `json:"language,omitempty"`
}

// Analysis is the result of Analyze.
type Analysis struct {
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	KeyPoints string `json:"keyPoints"`
	Sentiment string `json:"sentiment"`
}
