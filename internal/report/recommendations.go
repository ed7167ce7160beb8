package report

import (
	"botlint/internal/aggregate"
	"botlint/internal/issue"
)

// Recommendation is a general piece of advice shown after the issue list.
type Recommendation struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	Text  string `json:"text" yaml:"text" toml:"text"`
}

// alwaysRecommended closes every report.
var alwaysRecommended = []Recommendation{
	{
		Title: "📝 Logs e Monitoramento",
		Text:  "Implemente logging estruturado e considere usar ferramentas de monitoramento para produção.",
	},
	{
		Title: "🧪 Testes",
		Text:  "Adicione testes unitários e de integração para garantir a qualidade do código.",
	},
	{
		Title: "📚 Documentação",
		Text:  "Documente as funções e mantenha um README atualizado com instruções de instalação e uso.",
	},
}

// conditionalRecommendations are emitted only when their condition holds.
var conditionalRecommendations = []struct {
	when func(*aggregate.Report) bool
	rec  Recommendation
}{
	{
		when: func(r *aggregate.Report) bool { return r.CountSeverity(issue.SeverityCritical) > 0 },
		rec: Recommendation{
			Title: "🚨 Issues Críticas",
			Text:  "Há problemas críticos que devem ser corrigidos imediatamente, principalmente relacionados à segurança.",
		},
	},
	{
		when: func(r *aggregate.Report) bool { return r.ByCategory[issue.CategoryAuth] > 0 },
		rec: Recommendation{
			Title: "🔐 Segurança de Autenticação",
			Text:  "Implemente verificações de permissão baseadas em IDs de usuário em vez de nomes de exibição.",
		},
	},
	{
		when: func(r *aggregate.Report) bool { return r.ByCategory[issue.CategoryDRY] > 0 },
		rec: Recommendation{
			Title: "♻️ Refatoração",
			Text:  "Crie funções helper para lógicas repetitivas, especialmente verificação de permissões.",
		},
	},
	{
		when: func(r *aggregate.Report) bool { return r.ByType[string(issue.TypePerformance)] > 0 },
		rec: Recommendation{
			Title: "⚡ Performance",
			Text:  "Otimize queries de banco de dados e considere implementar cache para dados frequentemente acessados.",
		},
	},
}

// Recommendations returns the advice for r: the conditional entries that
// apply, followed by the general ones.
func Recommendations(r *aggregate.Report) []Recommendation {
	recs := make([]Recommendation, 0, len(conditionalRecommendations)+len(alwaysRecommended))
	for _, c := range conditionalRecommendations {
		if c.when(r) {
			recs = append(recs, c.rec)
		}
	}
	return append(recs, alwaysRecommended...)
}
