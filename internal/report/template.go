package report

import "strings"

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func upper(s string) string {
	return strings.ToUpper(s)
}

const documentTemplate = `<div class="report-content">
    <div class="report-header">
        <h1>🤖 Análise do Bot Discord</h1>
        <p class="report-date">Relatório gerado em {{.GeneratedAt}}</p>
    </div>

    <div class="stats-section">
        <h2>📊 Resumo da Análise</h2>
        <div class="stats-grid">
            <div class="stat-card total">
                <div class="stat-number">{{.Total}}</div>
                <div class="stat-label">Total de Issues</div>
            </div>
{{- range .Stats}}
            <div class="stat-card severity-{{.Severity}}">
                <div class="stat-number">{{.Count}}</div>
                <div class="stat-label">{{.Label}}</div>
                <div class="stat-percentage">{{.Percentage}}</div>
            </div>
{{- end}}
        </div>
    </div>

    <div class="issues-section">
        <h2>📋 Issues Encontradas</h2>
{{- range .Groups}}
        <div class="category-section">
            <h3 class="category-title">{{.Category}}</h3>
{{- range .Issues}}
            <div class="issue-card severity-{{.Severity}}">
                <div class="issue-header">
                    <span class="severity-badge" style="background-color: {{.Color}}">{{.Icon}} {{.Badge}}</span>
                    <span class="line-number">Linha {{.Line}}</span>
                </div>
                <h4 class="issue-title">{{.Description}}</h4>
                <div class="code-snippet">
                    <pre><code>{{.Code}}</code></pre>
                </div>
                <div class="suggestion">
                    <strong>💡 Sugestão:</strong> {{.Suggestion}}
                </div>
            </div>
{{- end}}
        </div>
{{- end}}
    </div>

    <div class="recommendations-section">
        <h2>🎯 Recomendações Gerais</h2>
        <div class="recommendations-grid">
{{- range .Recommendations}}
            <div class="recommendation-card">
                <h4>{{.Title}}</h4>
                <p>{{.Text}}</p>
            </div>
{{- end}}
        </div>
    </div>
</div>
`

const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; color: #1f2937; }
.stats-grid, .recommendations-grid { display: flex; flex-wrap: wrap; gap: 1rem; }
.stat-card, .recommendation-card { border: 1px solid #e5e7eb; border-radius: 8px; padding: 1rem; min-width: 140px; }
.stat-number { font-size: 1.8rem; font-weight: bold; }
.issue-card { border: 1px solid #e5e7eb; border-radius: 8px; padding: 1rem; margin: 0.75rem 0; }
.severity-badge { color: #fff; border-radius: 4px; padding: 0.1rem 0.5rem; font-size: 0.8rem; }
.line-number { margin-left: 0.5rem; color: #6b7280; }
.code-snippet pre { background: #f3f4f6; padding: 0.5rem; overflow-x: auto; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`
