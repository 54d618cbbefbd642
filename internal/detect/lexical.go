package detect

import (
	"regexp"
	"strings"

	"guard-bot/internal/pattern"

	"go.uber.org/zap"
)

// LexicalRule is one compiled text pattern bound to a category, severity,
// and fix suggestion. Confidence is fixed at definition time and reflects
// how specific the pattern shape is.
type LexicalRule struct {
	Category       pattern.Type
	Severity       pattern.Severity
	Confidence     float64
	Regex          *regexp.Regexp
	Description    string
	Impact         string
	Recommendation string

	// RejectSubstring drops a match whose text contains this substring
	// (lowercased), e.g. an except block that does log before returning.
	RejectSubstring string
}

var lexicalRules = []LexicalRule{
	// silent fallback
	{
		Category:       pattern.TypeSilentFallback,
		Severity:       pattern.SeverityCritical,
		Confidence:     1.0,
		Regex:          regexp.MustCompile(`except\s*:\s*pass`),
		Description:    "Bare except: pass silences ALL exceptions including critical ones",
		Impact:         "Crashes and errors will be invisible. Debugging impossible. Production failures go unnoticed.",
		Recommendation: "Add logging: logger.exception('Error in X') OR catch specific exceptions",
	},
	{
		Category:       pattern.TypeSilentFallback,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`except\s+Exception\s*:\s*pass`),
		Description:    "Exception silenced without logging",
		Impact:         "Errors hidden. No visibility into failures. Silent degradation.",
		Recommendation: "Log the exception: logger.warning(f'Error: {e}', exc_info=True)",
	},
	{
		Category:       pattern.TypeSilentFallback,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.9,
		Regex:          regexp.MustCompile(`(?m)except\s+\w+\s*:\s*\n\s*$`),
		Description:    "Empty except block - error swallowed",
		Impact:         "Error disappears without trace. Impossible to debug.",
		Recommendation: "Add at minimum: logger.exception('Context message')",
	},
	{
		Category:        pattern.TypeSilentFallback,
		Severity:        pattern.SeverityWarning,
		Confidence:      0.85,
		Regex:           regexp.MustCompile(`(?m)except[^\n]*:\s*return\s+None\s*$`),
		Description:     "Silent None return on exception",
		Impact:          "Failure masked as 'no result'. Caller can't distinguish error from empty.",
		Recommendation:  "Log before returning OR raise a custom exception",
		RejectSubstring: "log",
	},

	// warning suppression
	{
		Category:       pattern.TypeWarningSuppression,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`warnings\.filterwarnings\(\s*["']ignore["']\s*\)`),
		Description:    "warnings.filterwarnings('ignore') suppresses ALL warnings",
		Impact:         "Deprecations, resource leaks, and API changes invisible. Technical debt accumulates.",
		Recommendation: "Suppress specific warnings only: warnings.filterwarnings('ignore', category=SpecificWarning)",
	},
	{
		Category:       pattern.TypeWarningSuppression,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`-W\s+ignore`),
		Description:    "Command line -W ignore flag suppresses warnings",
		Impact:         "Deprecations, resource leaks, and API changes invisible. Technical debt accumulates.",
		Recommendation: "Run without -W ignore, or scope suppression to a single warning category",
	},
	{
		Category:       pattern.TypeWarningSuppression,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`@pytest\.mark\.filterwarnings\(\s*["']ignore`),
		Description:    "pytest filterwarnings(ignore) hides test warnings",
		Impact:         "Deprecations, resource leaks, and API changes invisible. Technical debt accumulates.",
		Recommendation: "Filter the specific warning only: @pytest.mark.filterwarnings('ignore::DeprecationWarning')",
	},
	{
		Category:       pattern.TypeWarningSuppression,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`warnings\.simplefilter\(\s*["']ignore["']\s*\)`),
		Description:    "warnings.simplefilter('ignore') globally suppresses warnings",
		Impact:         "Deprecations, resource leaks, and API changes invisible. Technical debt accumulates.",
		Recommendation: "Suppress specific warnings only: warnings.simplefilter('ignore', SpecificWarning)",
	},

	// security shortcuts
	{
		Category:       pattern.TypeSecurityShortcut,
		Severity:       pattern.SeverityCritical,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`(?i)\.format\(.*SELECT.*FROM`),
		Description:    "SQL injection via string formatting",
		Impact:         "SQL INJECTION. Attacker can execute arbitrary SQL, dump database, delete data.",
		Recommendation: "Use parameterized queries: cursor.execute('SELECT * FROM users WHERE id = %s', (user_id,))",
	},
	{
		Category:       pattern.TypeSecurityShortcut,
		Severity:       pattern.SeverityCritical,
		Confidence:     0.9,
		Regex:          regexp.MustCompile(`(?i)f["'][^"']*SELECT[^"']*FROM[^"']*\{`),
		Description:    "SQL injection via f-string interpolation",
		Impact:         "SQL INJECTION. Attacker can execute arbitrary SQL, dump database, delete data.",
		Recommendation: "Use parameterized queries instead of interpolating values into the SQL text",
	},
	{
		Category:       pattern.TypeSecurityShortcut,
		Severity:       pattern.SeverityCritical,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`\beval\s*\(`),
		Description:    "eval() allows arbitrary code execution",
		Impact:         "REMOTE CODE EXECUTION. Attacker can run ANY Python code on your server.",
		Recommendation: "Never use eval(). Parse JSON with json.loads() or use ast.literal_eval() for literals",
	},
	{
		Category:       pattern.TypeSecurityShortcut,
		Severity:       pattern.SeverityCritical,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`\bexec\s*\(`),
		Description:    "exec() allows arbitrary code execution",
		Impact:         "REMOTE CODE EXECUTION. Attacker can run ANY Python code.",
		Recommendation: "Refactor to avoid exec(). Use functions, classes, or importlib instead",
	},
	{
		Category:       pattern.TypeSecurityShortcut,
		Severity:       pattern.SeverityCritical,
		Confidence:     0.95,
		Regex:          regexp.MustCompile(`(?i)(password|secret|api_key)\s*=\s*["'][^"']+["']`),
		Description:    "Hardcoded credentials",
		Impact:         "CREDENTIAL LEAK. Credentials in code will be in git, logs, error messages.",
		Recommendation: "Use environment variables: os.environ['API_KEY'] or secrets manager",
	},

	// error masking
	{
		Category:       pattern.TypeErrorMasking,
		Severity:       pattern.SeverityInfo,
		Confidence:     0.8,
		Regex:          regexp.MustCompile(`raise\s+Exception\(\s*["'](Error|Something went wrong|Failed)["']`),
		Description:    "Generic error message without context",
		Impact:         "Users/developers can't understand what failed or why. Support burden increases.",
		Recommendation: "Use specific exceptions: raise ValueError(f'Invalid input {x}: must be > 0')",
	},
	{
		Category:       pattern.TypeErrorMasking,
		Severity:       pattern.SeverityInfo,
		Confidence:     0.6,
		Regex:          regexp.MustCompile(`raise\s+Exception\(\s*["'][^"'{%]{1,16}["']\s*\)`),
		Description:    "Exception message too generic to identify the failure",
		Impact:         "Root cause hidden behind a vague message. Every incident starts from zero.",
		Recommendation: "Raise a specific exception type and include the failing values in the message",
	},
	{
		Category:       pattern.TypeErrorMasking,
		Severity:       pattern.SeverityInfo,
		Confidence:     0.7,
		Regex:          regexp.MustCompile(`(?m)except[^\n]*:\s*\n\s*raise\s+Exception\(`),
		Description:    "Specific exception re-raised as bare Exception",
		Impact:         "Original exception type and traceback context lost. Callers cannot catch precisely.",
		Recommendation: "Re-raise with context: raise ProcessingError('step X failed') from exc",
	},

	// test avoidance
	{
		Category:       pattern.TypeTestAvoidance,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.9,
		Regex:          regexp.MustCompile(`@pytest\.mark\.skip`),
		Description:    "Test marked as skip",
		Impact:         "Skipped tests = untested code. Regressions will go unnoticed.",
		Recommendation: "Fix the test instead of skipping. If temporary, add issue reference and deadline.",
	},
	{
		Category:       pattern.TypeTestAvoidance,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.9,
		Regex:          regexp.MustCompile(`@unittest\.skip`),
		Description:    "Test marked as skip",
		Impact:         "Skipped tests = untested code. Regressions will go unnoticed.",
		Recommendation: "Fix the test instead of skipping. If temporary, add issue reference and deadline.",
	},
	{
		Category:       pattern.TypeTestAvoidance,
		Severity:       pattern.SeverityWarning,
		Confidence:     0.9,
		Regex:          regexp.MustCompile(`skipTest\(`),
		Description:    "Test skipped at runtime via skipTest()",
		Impact:         "Skipped tests = untested code. Regressions will go unnoticed.",
		Recommendation: "Fix the test instead of skipping. If temporary, add issue reference and deadline.",
	},
}

// LexicalScanner applies the compiled rule library to raw source text
type LexicalScanner struct {
	rules  []LexicalRule
	logger *zap.Logger
}

// NewLexicalScanner creates a scanner over the built-in rule library
func NewLexicalScanner(logger *zap.Logger) *LexicalScanner {
	return &LexicalScanner{
		rules:  lexicalRules,
		logger: logger,
	}
}

// Rules returns the rule library, for listing and documentation
func (s *LexicalScanner) Rules() []LexicalRule {
	return s.rules
}

// Scan runs every enabled rule against the source text. A single line may
// match several rules of the same category; only the highest-confidence
// match per (line, category) pair is kept. Pure function of its input.
func (s *LexicalScanner) Scan(code string, enabled map[pattern.Type]bool) []pattern.Detection {
	lines := strings.Split(code, "\n")

	type key struct {
		category pattern.Type
		line     int
	}
	best := make(map[key]pattern.Detection)
	var order []key

	for _, rule := range s.rules {
		if !enabled[rule.Category] {
			continue
		}

		for _, loc := range rule.Regex.FindAllStringIndex(code, -1) {
			matched := code[loc[0]:loc[1]]
			if rule.RejectSubstring != "" && strings.Contains(strings.ToLower(matched), rule.RejectSubstring) {
				continue
			}

			// Multi-line matches are attributed to their first line.
			line := strings.Count(code[:loc[0]], "\n") + 1

			det := pattern.Detection{
				Type:           rule.Category,
				Severity:       rule.Severity,
				Line:           line,
				Snippet:        snippetAt(lines, line),
				Description:    rule.Description,
				Impact:         rule.Impact,
				Recommendation: rule.Recommendation,
				Confidence:     rule.Confidence,
				Source:         pattern.SourceLexical,
			}

			k := key{rule.Category, line}
			existing, seen := best[k]
			if !seen {
				best[k] = det
				order = append(order, k)
			} else if det.Confidence > existing.Confidence {
				best[k] = det
			}
		}
	}

	detections := make([]pattern.Detection, 0, len(order))
	for _, k := range order {
		detections = append(detections, best[k])
	}
	return detections
}

func snippetAt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
