package model

// EmailRequest is the inbound body of both email endpoints.
// Tone and Language are optional; empty means absent.
type EmailRequest struct {
	EmailContent string `json:"emailContent"`
	Tone         string `json:"tone,omitempty"`
	Language     string `json:"language,omitempty"`
}

// EmailAnalysisResponse holds the fields extracted from an email
type EmailAnalysisResponse struct {
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	KeyPoints string `json:"keyPoints"`
	Sentiment string `json:"sentiment"`
}

// Fields returns the four text fields in wire order
func (r *EmailAnalysisResponse) Fields() []string {
	return []string{r.Sender, r.Subject, r.KeyPoints, r.Sentiment}
}

// WithFields returns a copy with the fields replaced, in the order returned by Fields
func (r *EmailAnalysisResponse) WithFields(fields []string) *EmailAnalysisResponse {
	return &EmailAnalysisResponse{
		Sender:    fields[0],
		Subject:   fields[1],
		KeyPoints: fields[2],
		Sentiment: fields[3],
	}
}
