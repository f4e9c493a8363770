package ats

import (
	"regexp"
	"strings"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// DocumentInfo is the lightweight metadata the format scorer works from.
type DocumentInfo struct {
	Text       string
	PageCount  int
	FileSize   int64
	ImageCount int
}

const maxFileSizeBytes = 2 * 1024 * 1024

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Header synonym sets. A CV missing an "experience"-equivalent header is
// the strongest structural red flag a real ATS parser trips over.
var experienceHeaders = []string{
	"experience", "work experience", "employment", "employment history",
	"work history", "professional experience", "career history",
}

var skillsHeaders = []string{
	"skills", "technical skills", "core skills", "competencies",
	"technologies", "tech stack", "expertise",
}

var educationHeaders = []string{
	"education", "academic background", "qualifications", "studies",
	"academic history",
}

// Creative section titles that human readers enjoy and ATS parsers don't.
var nonStandardHeaders = []string{
	"my journey", "my story", "what i've done", "where i've been",
	"adventures", "things i've built", "my toolbox", "superpowers",
}

// ScoreFormat runs the heuristic structural checks over the extracted text
// and metadata. It is an additive deduction model: start at 100, subtract
// per failed check, floor at 0. Overlapping checks are cumulative.
func ScoreFormat(doc DocumentInfo) (int, []models.FormatIssue) {
	var issues []models.FormatIssue

	deduct := func(check string, severity models.IssueSeverity, deduction int, message string) {
		issues = append(issues, models.FormatIssue{
			Check:     check,
			Severity:  severity,
			Message:   message,
			Deduction: deduction,
		})
	}

	text := strings.TrimSpace(doc.Text)

	if len(text) < 100 {
		deduct("no_extractable_text", models.SeverityCritical, 40,
			"Almost no text could be extracted — the file may be a scanned image. Please upload a text-based PDF.")
	} else if len(text) < 500 {
		deduct("very_short_text", models.SeverityWarning, 10,
			"The document contains very little text. Recruiters and ATS systems expect more detail.")
	}

	if doc.PageCount > 3 {
		deduct("too_many_pages", models.SeverityWarning, 10,
			"The document is longer than 3 pages. Most recruiters prefer 1-2 pages.")
	}
	if doc.PageCount > 5 {
		deduct("far_too_many_pages", models.SeverityCritical, 20,
			"The document is longer than 5 pages. ATS systems may truncate it.")
	}

	if doc.FileSize > maxFileSizeBytes {
		deduct("large_file", models.SeverityWarning, 5,
			"The file is larger than 2MB. Some ATS uploads reject large files.")
	}

	if hasMultiColumnLayout(text) {
		deduct("multi_column_layout", models.SeverityWarning, 15,
			"The layout looks multi-column. Column layouts scramble the reading order for many ATS parsers.")
	}

	if hasNonStandardHeaders(text) {
		deduct("non_standard_headers", models.SeverityWarning, 10,
			"Creative section titles were found. Use conventional headers like \"Experience\" and \"Skills\".")
	}

	if !hasAnyHeader(text, experienceHeaders) {
		deduct("missing_experience_section", models.SeverityCritical, 15,
			"No \"Experience\" section header was found. ATS parsers rely on it to locate your work history.")
	}
	if !hasAnyHeader(text, skillsHeaders) {
		deduct("missing_skills_section", models.SeverityWarning, 10,
			"No \"Skills\" section header was found.")
	}
	if !hasAnyHeader(text, educationHeaders) {
		deduct("missing_education_section", models.SeverityInfo, 5,
			"No \"Education\" section header was found.")
	}

	if !emailPattern.MatchString(text) {
		deduct("no_email", models.SeverityCritical, 10,
			"No e-mail address was found. Contact details must be machine-readable text, not an image.")
	}

	if nonStandardCharRatio(text) > 0.05 {
		deduct("unusual_characters", models.SeverityWarning, 10,
			"More than 5% of the text uses unusual characters or symbols, which suggests decorative fonts or icons.")
	}

	if doc.ImageCount > 2 {
		deduct("embedded_graphics", models.SeverityInfo, 5,
			"The document embeds several images. ATS parsers ignore graphics entirely.")
	}

	score := 100
	for _, issue := range issues {
		score -= issue.Deduction
	}
	if score < 0 {
		score = 0
	}

	// The UI always renders the issue list, so an empty one becomes a
	// single positive entry instead.
	if len(issues) == 0 {
		issues = append(issues, models.FormatIssue{
			Check:    "all_good",
			Severity: models.SeverityInfo,
			Message:  "No structural issues found — the document parses cleanly.",
		})
	}

	return score, issues
}

// hasMultiColumnLayout flags text where many lines are short AND lines
// contain large internal whitespace gaps. Either signal alone is common in
// normal CVs; together they indicate column extraction artifacts.
func hasMultiColumnLayout(text string) bool {
	lines := strings.Split(text, "\n")

	var nonEmpty, short, gapped int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if len(trimmed) < 40 {
			short++
		}
		if strings.Contains(trimmed, "    ") {
			gapped++
		}
	}

	if nonEmpty == 0 {
		return false
	}

	return float64(short)/float64(nonEmpty) > 0.4 && gapped > 0
}

func hasNonStandardHeaders(text string) bool {
	lower := strings.ToLower(text)
	for _, header := range nonStandardHeaders {
		if strings.Contains(lower, header) {
			return true
		}
	}
	return false
}

// hasAnyHeader looks for a short standalone line containing one of the
// synonyms. Matching anywhere in running text would false-positive on
// phrases like "my experience with Go".
func hasAnyHeader(text string, synonyms []string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if trimmed == "" || len(trimmed) > 40 {
			continue
		}
		trimmed = strings.TrimRight(trimmed, ":")
		for _, syn := range synonyms {
			if trimmed == syn || strings.HasPrefix(trimmed, syn+" ") || strings.HasSuffix(trimmed, " "+syn) {
				return true
			}
		}
	}
	return false
}

// nonStandardCharRatio measures characters outside printable ASCII and the
// Latin Extended range. Whitespace doesn't count against the document.
func nonStandardCharRatio(text string) float64 {
	if text == "" {
		return 0
	}

	var total, unusual int
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r == ' ' {
			continue
		}
		total++
		if (r < 0x20 || r > 0x7E) && !(r >= 0x00C0 && r <= 0x024F) {
			unusual++
		}
	}

	if total == 0 {
		return 0
	}
	return float64(unusual) / float64(total)
}
