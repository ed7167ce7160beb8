package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"botlint/internal/issue"
)

const (
	// inlineImportAfterLine is the line after which an import is out of place.
	inlineImportAfterLine = 200

	// maxLineLength is the longest line (in characters) that is not reported.
	maxLineLength = 100

	loggingWindow   = 5
	commitWindow    = 10
	nullGuardWindow = 10
	loopQueryWindow = 5
)

// reMagicNumber matches 25 or 60 as a whole word. RE2's \b is ASCII-only,
// so the boundary is spelled out to treat any Unicode letter or digit as
// part of the word.
var reMagicNumber = regexp.MustCompile(`(^|[^\p{L}\p{N}_])(25|60)([^\p{L}\p{N}_]|$)`)

// BuiltinPasses contains every detection pass, in execution order.
var BuiltinPasses = []Pass{
	{Name: "imports", Description: "Imports declared in the middle of the file", Run: checkImports},
	{Name: "error-handling", Description: "Generic exception handlers and vague error messages", Run: checkErrorHandling},
	{Name: "security", Description: "Identity checks, SQL string building and hardcoded timeouts", Run: checkSecurity},
	{Name: "database", Description: "Database writes without commit and unindexed lookups", Run: checkDatabase},
	{Name: "discord-api", Description: "Optional member access and outbound message rate limiting", Run: checkDiscordAPI},
	{Name: "code-quality", Description: "Long lines, magic numbers and duplicated permission logic", Run: checkCodeQuality},
	{Name: "performance", Description: "Queries issued inside leaderboard loops", Run: checkPerformance},
	{Name: "docstrings", Description: "Function definitions without a docstring", Run: checkDocstrings},
}

// ============ Imports ============

var tmplInlineImport = issue.Template{
	Type:        issue.TypeCodeQuality,
	Severity:    issue.SeverityMedium,
	Description: "Import inline de aiosqlite - deveria estar no topo do arquivo",
	Suggestion:  "Mova todos os imports para o início do arquivo",
	Category:    issue.CategoryCodeOrganization,
}

func checkImports(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, "import ") && !strings.HasPrefix(stripped, "from ") {
			continue
		}
		if strings.Contains(line, "import aiosqlite") && n > inlineImportAfterLine {
			out = append(out, src.Issue(n, "imports", tmplInlineImport))
		}
	}
	return out
}

// ============ Error handling ============

var (
	tmplUnloggedException = issue.Template{
		Type:        issue.TypeBestPractice,
		Severity:    issue.SeverityMedium,
		Description: "Exception capturada mas não logada adequadamente",
		Suggestion:  "Adicione logging detalhado para facilitar debugging",
		Category:    issue.CategoryErrorHandling,
	}
	tmplGenericErrorMessage = issue.Template{
		Type:        issue.TypeCodeQuality,
		Severity:    issue.SeverityLow,
		Description: "Mensagem de erro muito genérica para o usuário",
		Suggestion:  "Forneça mensagens de erro mais específicas quando possível",
		Category:    issue.CategoryUX,
	}
)

// tryState tracks whether the scan is inside a try block.
type tryState struct {
	inside   bool
	openedAt int
}

func (s *tryState) enter(line int) {
	s.inside = true
	s.openedAt = line
}

func (s *tryState) reset() {
	s.inside = false
	s.openedAt = 0
}

func checkErrorHandling(src *Source) []issue.Issue {
	var out []issue.Issue
	var state tryState

	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(stripped, "try:"):
			state.enter(n)

		case strings.HasPrefix(stripped, "except Exception as e:"):
			if state.inside && !anyContains(src.Window(n, loggingWindow), "logger.") {
				out = append(out, src.Issue(n, "error-handling", tmplUnloggedException))
			}
			state.reset()

		case strings.Contains(stripped, "await ctx.send(") && strings.Contains(strings.ToLower(stripped), "erro"):
			if strings.Contains(line, "❌ Ocorreu um erro") {
				out = append(out, src.Issue(n, "error-handling", tmplGenericErrorMessage))
			}
		}
	}
	return out
}

// ============ Security ============

var (
	tmplDisplayNameAuth = issue.Template{
		Type:        issue.TypeSecurity,
		Severity:    issue.SeverityHigh,
		Description: "Verificação de permissão usando display_name é insegura",
		Suggestion:  "Use ctx.author.id em vez de display_name para verificação de permissões",
		Category:    issue.CategoryAuth,
	}
	tmplSQLInjection = issue.Template{
		Type:        issue.TypeSecurity,
		Severity:    issue.SeverityCritical,
		Description: "Possível vulnerabilidade de SQL Injection",
		Suggestion:  "Use sempre prepared statements com placeholders (?)",
		Category:    issue.CategoryDataSecurity,
	}
	tmplShortTimeout = issue.Template{
		Type:        issue.TypePerformance,
		Severity:    issue.SeverityLow,
		Description: "Timeout de 30 segundos pode ser insuficiente em algumas situações",
		Suggestion:  "Considere aumentar o timeout ou torná-lo configurável",
		Category:    issue.CategoryPerformance,
	}
)

func checkSecurity(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if strings.Contains(stripped, "ctx.author.display_name in admin_users") {
			out = append(out, src.Issue(n, "security", tmplDisplayNameAuth))
		}

		if strings.Contains(stripped, "await db.execute(") && strings.Contains(stripped, `"`) {
			if strings.Contains(stripped, "+") || strings.Contains(stripped, `f"`) {
				out = append(out, src.Issue(n, "security", tmplSQLInjection))
			}
		}

		if strings.Contains(stripped, "timeout=30.0") {
			out = append(out, src.Issue(n, "security", tmplShortTimeout))
		}
	}
	return out
}

// ============ Database ============

var (
	tmplMissingCommit = issue.Template{
		Type:        issue.TypeBug,
		Severity:    issue.SeverityHigh,
		Description: "Múltiplas operações de banco sem commit explícito",
		Suggestion:  "Adicione await db.commit() após as operações de escrita",
		Category:    issue.CategoryDatabase,
	}
	tmplMissingIndex = issue.Template{
		Type:        issue.TypePerformance,
		Severity:    issue.SeverityLow,
		Description: "Query poderia usar índice para melhor performance",
		Suggestion:  "Certifique-se de que existe um índice na coluna user_id",
		Category:    issue.CategoryDatabaseTuning,
	}
)

func checkDatabase(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if strings.Contains(stripped, "async with aiosqlite.connect(") {
			window := src.Window(n, commitWindow)
			if countContains(window, "await db.execute(") > 1 && !anyContains(window, "await db.commit()") {
				out = append(out, src.Issue(n, "database", tmplMissingCommit))
			}
		}

		if strings.Contains(stripped, "SELECT total_points FROM users WHERE user_id = ?") {
			out = append(out, src.Issue(n, "database", tmplMissingIndex))
		}
	}
	return out
}

// ============ Discord API ============

var (
	tmplUnguardedMember = issue.Template{
		Type:        issue.TypeBug,
		Severity:    issue.SeverityMedium,
		Description: "Possível acesso a member None sem validação",
		Suggestion:  "Sempre valide se member não é None antes de usar",
		Category:    issue.CategoryDiscordAPI,
	}
	tmplRateLimit = issue.Template{
		Type:        issue.TypeBestPractice,
		Severity:    issue.SeverityInfo,
		Description: "Considere implementar rate limiting para comandos",
		Suggestion:  "Implemente cooldowns para evitar spam de comandos",
		Category:    issue.CategoryRateLimiting,
	}
)

func checkDiscordAPI(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if strings.Contains(stripped, "member: discord.Member | None = None") {
			window := src.Window(n, nullGuardWindow)
			guarded := anyContains(window, "if not member:")
			if !guarded && strings.Contains(strings.Join(window, " "), "member.id") {
				out = append(out, src.Issue(n, "discord-api", tmplUnguardedMember))
			}
		}

		// Fires once per outbound message, with no suppression.
		if strings.Contains(stripped, "await ctx.send(") {
			out = append(out, src.Issue(n, "discord-api", tmplRateLimit))
		}
	}
	return out
}

// ============ Code quality ============

var (
	tmplMagicNumber = issue.Template{
		Type:        issue.TypeCodeQuality,
		Severity:    issue.SeverityLow,
		Description: "Uso de números mágicos no código",
		Suggestion:  "Defina constantes para valores numéricos importantes",
		Category:    issue.CategoryMaintainability,
	}
	tmplDuplicatedPermission = issue.Template{
		Type:        issue.TypeCodeQuality,
		Severity:    issue.SeverityMedium,
		Description: "Lógica de verificação de permissão duplicada",
		Suggestion:  "Crie uma função helper para verificação de permissões",
		Category:    issue.CategoryDRY,
	}
)

func longLineTemplate(length int) issue.Template {
	return issue.Template{
		Type:        issue.TypeCodeQuality,
		Severity:    issue.SeverityLow,
		Description: fmt.Sprintf("Linha muito longa (%d caracteres)", length),
		Suggestion:  "Quebre linhas longas em múltiplas linhas para melhor legibilidade",
		Category:    issue.CategoryFormatting,
	}
}

func checkCodeQuality(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if length := utf8.RuneCountInString(line); length > maxLineLength {
			out = append(out, src.Issue(n, "code-quality", longLineTemplate(length)))
		}

		if reMagicNumber.MatchString(stripped) && strings.Contains(stripped, "limit") {
			out = append(out, src.Issue(n, "code-quality", tmplMagicNumber))
		}

		if strings.Contains(stripped, "is_admin = ctx.author.display_name in admin_users") {
			out = append(out, src.Issue(n, "code-quality", tmplDuplicatedPermission))
		}
	}
	return out
}

// ============ Performance ============

var tmplLoopQuery = issue.Template{
	Type:        issue.TypePerformance,
	Severity:    issue.SeverityMedium,
	Description: "Possível N+1 query problem em loop",
	Suggestion:  "Otimize queries para buscar todos os dados de uma vez",
	Category:    issue.CategoryQueryTuning,
}

func checkPerformance(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		stripped := strings.TrimSpace(line)

		if strings.Contains(stripped, "for i, (username, points, user_id) in enumerate(leaderboard") {
			if anyContains(src.Window(n, loopQueryWindow), "await bot.db.") {
				out = append(out, src.Issue(n, "performance", tmplLoopQuery))
			}
		}
	}
	return out
}

// ============ Documentation ============

var tmplMissingDocstring = issue.Template{
	Type:        issue.TypeBestPractice,
	Severity:    issue.SeverityLow,
	Description: "Função sem docstring",
	Suggestion:  "Adicione docstrings descrevendo o propósito e parâmetros da função",
	Category:    issue.CategoryDocumentation,
}

func checkDocstrings(src *Source) []issue.Issue {
	var out []issue.Issue
	for i, line := range src.Lines {
		n := i + 1
		// "async def " contains "def ", so one check covers both forms.
		if !strings.Contains(line, "def ") {
			continue
		}
		// The next line must exist and must not be the final line.
		if n+1 >= len(src.Lines) {
			continue
		}
		next := strings.TrimSpace(src.Lines[n])
		if !strings.HasPrefix(next, `"""`) && !strings.HasPrefix(next, "'''") {
			out = append(out, src.Issue(n, "docstrings", tmplMissingDocstring))
		}
	}
	return out
}

// ============ Helpers ============

func anyContains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func countContains(lines []string, substr string) int {
	count := 0
	for _, l := range lines {
		if strings.Contains(l, substr) {
			count++
		}
	}
	return count
}
