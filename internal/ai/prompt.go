package ai

import (
	"fmt"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

// buildAnalysisPrompt renders the fixed four-category review prompt. The
// model is instructed to answer with JSON only; parsing stays lenient
// regardless (see extractFindings).
func buildAnalysisPrompt(code string, language domain.Language, fileName string) string {
	return fmt.Sprintf(`Review the code below and report suggestions in four categories.

**File:** %s
**Language:** %s

**Code:**
`+"```%s\n%s\n```"+`

**Categories:**

1) **Errors/Bugs**: syntax errors, logic errors, runtime errors
2) **Security**: SQL injection, XSS, CSRF, input validation issues
3) **Refactor**: code improvements, performance optimizations, best practices
4) **Readability**: naming, missing comments, structure

**Response format (JSON):**
{
    "errors": ["finding 1", "finding 2"],
    "security": ["finding 1", "finding 2"],
    "refactor": ["finding 1", "finding 2"],
    "readability": ["finding 1", "finding 2"]
}

Respond with JSON only, no extra explanation.`, fileName, language, language, code)
}
