package domain

import (
	"strings"
	"time"
)

// Language enumerates the source languages accepted for analysis.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguagePHP        Language = "php"
	LanguageRuby       Language = "ruby"
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguageSwift      Language = "swift"
	LanguageKotlin     Language = "kotlin"
	LanguageScala      Language = "scala"
	LanguageHTML       Language = "html"
	LanguageCSS        Language = "css"
	LanguageSQL        Language = "sql"
)

var supportedLanguages = map[Language]struct{}{
	LanguageJavaScript: {},
	LanguageTypeScript: {},
	LanguagePython:     {},
	LanguageJava:       {},
	LanguageCPP:        {},
	LanguageCSharp:     {},
	LanguagePHP:        {},
	LanguageRuby:       {},
	LanguageGo:         {},
	LanguageRust:       {},
	LanguageSwift:      {},
	LanguageKotlin:     {},
	LanguageScala:      {},
	LanguageHTML:       {},
	LanguageCSS:        {},
	LanguageSQL:        {},
}

func SupportedLanguage(language Language) bool {
	_, ok := supportedLanguages[language]
	return ok
}

// DefaultFileName labels submissions that arrive without one.
const DefaultFileName = "code.txt"

type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// Terminal reports whether no further status transition is expected.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JobMessage is the wire format carried through the work queue.
// Immutable once published; workers treat it as read-only.
type JobMessage struct {
	AnalysisID  string    `json:"analysisId"`
	Code        string    `json:"code"`
	Language    Language  `json:"language"`
	FileName    string    `json:"fileName"`
	SubmittedAt time.Time `json:"submittedAt,omitempty"`
}

// Validate checks the structural invariants a dequeued message must hold.
func (m JobMessage) Validate() error {
	if strings.TrimSpace(m.AnalysisID) == "" {
		return ErrMissingAnalysisID
	}
	if strings.TrimSpace(m.Code) == "" {
		return ErrEmptyCode
	}
	return nil
}

// Findings groups the four categories the analyzer reports on.
type Findings struct {
	Errors      []string `json:"errors"`
	Security    []string `json:"security"`
	Refactor    []string `json:"refactor"`
	Readability []string `json:"readability"`
}

// EmptyFindings returns a findings set with all four lists present but empty,
// so serialized results always carry the full category shape.
func EmptyFindings() Findings {
	return Findings{
		Errors:      []string{},
		Security:    []string{},
		Refactor:    []string{},
		Readability: []string{},
	}
}

// Normalize replaces nil category lists with empty ones.
func (f Findings) Normalize() Findings {
	if f.Errors == nil {
		f.Errors = []string{}
	}
	if f.Security == nil {
		f.Security = []string{}
	}
	if f.Refactor == nil {
		f.Refactor = []string{}
	}
	if f.Readability == nil {
		f.Readability = []string{}
	}
	return f
}

// AnalysisResult is the terminal record stored per job. Whole-value
// overwrites only; the last writer wins.
type AnalysisResult struct {
	ID          string         `json:"id"`
	Status      AnalysisStatus `json:"status"`
	Code        string         `json:"code"`
	Language    Language       `json:"language"`
	FileName    string         `json:"fileName"`
	Errors      []string       `json:"errors"`
	Security    []string       `json:"security"`
	Refactor    []string       `json:"refactor"`
	Readability []string       `json:"readability"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
}

// CompletedResult builds the terminal record for a successful analysis.
func CompletedResult(message JobMessage, findings Findings, completedAt time.Time) AnalysisResult {
	findings = findings.Normalize()
	return AnalysisResult{
		ID:          message.AnalysisID,
		Status:      StatusCompleted,
		Code:        message.Code,
		Language:    message.Language,
		FileName:    message.FileName,
		Errors:      findings.Errors,
		Security:    findings.Security,
		Refactor:    findings.Refactor,
		Readability: findings.Readability,
		CreatedAt:   formatTimestamp(message.SubmittedAt),
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	}
}

// FailedResult builds the terminal record for a failed analysis. All four
// finding lists are empty and the error message is populated.
func FailedResult(message JobMessage, errorMessage string, completedAt time.Time) AnalysisResult {
	findings := EmptyFindings()
	return AnalysisResult{
		ID:          message.AnalysisID,
		Status:      StatusFailed,
		Code:        message.Code,
		Language:    message.Language,
		FileName:    message.FileName,
		Errors:      findings.Errors,
		Security:    findings.Security,
		Refactor:    findings.Refactor,
		Readability: findings.Readability,
		Error:       errorMessage,
		CreatedAt:   formatTimestamp(message.SubmittedAt),
		CompletedAt: completedAt.UTC().Format(time.RFC3339),
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
