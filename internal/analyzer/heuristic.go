package analyzer

import (
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/emailwriter/emailwriter/internal/model"
)

const (
	defaultSender    = "Unknown Sender"
	defaultSubject   = "No Subject"
	defaultKeyPoints = "No clear main points detected"

	maxMarkedPoints   = 3
	maxFallbackPoints = 2
)

var (
	headerLine       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*:\s`)
	emailPattern     = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9._-]+`)
	namePattern      = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)
	sentenceBoundary = regexp.MustCompile(`[.!?]+`)

	greetings        = []string{"hi", "hello", "dear", "good"}
	importantMarkers = []string{"important", "urgent", "please", "need", "must", "required", "deadline", "asap", "attention", "critical"}
	positiveWords    = []string{"thank", "appreciate", "good", "great", "excellent", "pleased", "happy", "glad", "wonderful", "looking forward"}
	negativeWords    = []string{"urgent", "concern", "issue", "problem", "sorry", "apologize", "unfortunately", "regret", "delay", "difficult"}
)

// Heuristic derives the analysis from the text itself using header
// parsing and keyword matching.
type Heuristic struct{}

// Analyze implements Analyzer
func (Heuristic) Analyze(emailContent string) *model.EmailAnalysisResponse {
	sender, subject, body := parseHeaders(emailContent)
	lines := nonEmptyLines(body)

	if sender == "" || subject == "" {
		s, subj, rest := scanHeaderLines(lines)
		if sender == "" {
			sender = s
		}
		if subject == "" {
			subject = subj
		}
		lines = rest
	}
	if sender == "" {
		sender = guessSender(lines)
	}
	if subject == "" {
		subject = guessSubject(lines)
	}

	points := keyPoints(lines)

	resp := &model.EmailAnalysisResponse{
		Sender:    sender,
		Subject:   subject,
		KeyPoints: strings.Join(points, "; "),
		Sentiment: sentiment(emailContent),
	}
	if resp.Sender == "" {
		resp.Sender = defaultSender
	}
	if resp.Subject == "" {
		resp.Subject = defaultSubject
	}
	if resp.KeyPoints == "" {
		resp.KeyPoints = defaultKeyPoints
	}
	return resp
}

// parseHeaders reads an RFC 5322 header block when the content starts with
// one that is closed by a blank line. body is the remaining text, or the
// whole content when there is no such block.
func parseHeaders(content string) (sender, subject, body string) {
	trimmed := strings.TrimLeft(content, "\r\n")
	if !hasHeaderBlock(trimmed) {
		return "", "", content
	}

	env, err := enmime.ReadEnvelope(strings.NewReader(trimmed))
	if err != nil {
		return "", "", content
	}

	sender = strings.TrimSpace(env.GetHeader("From"))
	subject = strings.TrimSpace(env.GetHeader("Subject"))
	if sender == "" && subject == "" {
		return "", "", content
	}
	return sender, subject, env.Text
}

// hasHeaderBlock reports whether text starts with header fields (and their
// folded continuations) followed by an empty line. Without the empty line
// the mail parser would fold the body into the last header.
func hasHeaderBlock(text string) bool {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, "\r")
		switch {
		case l == "":
			return i > 0
		case headerLine.MatchString(l):
		case i > 0 && (l[0] == ' ' || l[0] == '\t'):
		default:
			return false
		}
	}
	return false
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimRight(l, "\r"))
		}
	}
	return lines
}

// scanHeaderLines looks for From: and Subject: in the first five lines.
// rest is lines without the matched header lines.
func scanHeaderLines(lines []string) (sender, subject string, rest []string) {
	rest = make([]string, 0, len(lines))
	for i, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case i < 5 && strings.HasPrefix(lower, "from:"):
			sender = strings.TrimSpace(strings.TrimSpace(line)[len("from:"):])
		case i < 5 && strings.HasPrefix(lower, "subject:"):
			subject = strings.TrimSpace(strings.TrimSpace(line)[len("subject:"):])
		default:
			rest = append(rest, line)
		}
	}
	return sender, subject, rest
}

func guessSender(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	for i := 0; i < min(3, len(lines)); i++ {
		if m := emailPattern.FindString(lines[i]); m != "" {
			return m
		}
		if m := namePattern.FindString(lines[i]); m != "" {
			return m
		}
	}
	return strings.TrimSpace(lines[0])
}

func guessSubject(lines []string) string {
	if len(lines) < 2 {
		return ""
	}
	for i := 0; i < min(3, len(lines)); i++ {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if len(line) > 10 && len(line) < 100 && !hasAnyPrefix(lower, greetings) {
			return line
		}
	}
	return ""
}

func keyPoints(lines []string) []string {
	var sentences []string
	for _, s := range sentenceBoundary.Split(strings.Join(lines, " "), -1) {
		if s = strings.TrimSpace(s); len(s) > 10 {
			sentences = append(sentences, s)
		}
	}

	var points []string
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), importantMarkers) {
			points = append(points, s)
			if len(points) == maxMarkedPoints {
				return points
			}
		}
	}
	if len(points) > 0 {
		return points
	}

	for _, s := range sentences {
		if len(s) > 30 {
			points = append(points, s)
			if len(points) == maxFallbackPoints {
				break
			}
		}
	}
	return points
}

func sentiment(content string) string {
	text := strings.ToLower(content)
	pos := countContained(text, positiveWords)
	neg := countContained(text, negativeWords)
	switch {
	case pos > neg:
		return "Positive"
	case neg > pos:
		return "Negative"
	default:
		return "Neutral"
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	return countContained(s, words) > 0
}

func countContained(s string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(s, w) {
			n++
		}
	}
	return n
}
