package service

import "strings"

const replyInstruction = "Generate a professional email reply for the following email content. Please don't generate a subject line. "

// BuildPrompt assembles the generation prompt for an email. The tone clause
// is only added when tone is non-empty.
func BuildPrompt(emailContent, tone string) string {
	var b strings.Builder
	b.WriteString(replyInstruction)
	if tone != "" {
		b.WriteString("Use a ")
		b.WriteString(tone)
		b.WriteString(" tone.")
	}
	b.WriteString("\nOriginal email: \n")
	b.WriteString(emailContent)
	return b.String()
}
