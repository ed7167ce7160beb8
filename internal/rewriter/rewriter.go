// Package rewriter produces an improved variant of the bot source by textual
// patching. It does not parse the text and does not consult analyzer output.
package rewriter

import "strings"

// header is prepended to every rewritten text. It hoists the imports and
// logger, names the magic numbers and adds the shared permission helper.
var header = []string{
	"import discord",
	"from discord.ext import commands",
	"import logging",
	"import asyncio",
	"import aiosqlite",
	"from bot.utils import create_embed, format_points",
	"from typing import Optional",
	"",
	"# Logger para registrar erros e eventos",
	"logger = logging.getLogger(__name__)",
	"",
	"# Constantes",
	"MAX_RANKING_LIMIT = 25",
	"DEFAULT_RANKING_LIMIT = 10",
	"CONFIRMATION_TIMEOUT = 30.0",
	"",
	"async def check_permissions(ctx, bot) -> bool:",
	`    """Helper function para verificar permissões de admin/moderator"""`,
	"    admin_users = bot.config.get('permissions', {}).get('admin_users', [])",
	"    moderator_roles = bot.config.get('permissions', {}).get('moderator_roles', [])",
	"    ",
	"    # Usar ID em vez de display_name para segurança",
	"    is_admin = ctx.author.id in admin_users",
	"    is_moderator = any(role.name in moderator_roles for role in ctx.author.roles)",
	"    ",
	"    return is_admin or is_moderator",
	"",
}

const loggerInit = "logger = logging.getLogger(__name__)"

// substitutions replace magic numbers with the constants from header.
var substitutions = strings.NewReplacer(
	"limit > 25", "limit > MAX_RANKING_LIMIT",
	"limit = 25", "limit = MAX_RANKING_LIMIT",
	"limit = 10", "limit = DEFAULT_RANKING_LIMIT",
	"timeout=30.0", "timeout=CONFIRMATION_TIMEOUT",
)

// Rewrite returns the improved text. Anchors that are absent leave the
// corresponding lines untouched apart from import hoisting and
// literal substitutions.
func Rewrite(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(header)+len(lines))
	out = append(out, header...)

	i := 0
	for i < len(lines) {
		line := lines[i]

		if isHoisted(line) {
			i++
			continue
		}

		if r, ok := matchRule(lines, i); ok {
			out = append(out, r.replacement...)
			i = r.consume(lines, i)
			continue
		}

		out = append(out, substitutions.Replace(line))
		i++
	}

	return strings.Join(out, "\n")
}

// isHoisted reports whether line is already covered by header.
func isHoisted(line string) bool {
	stripped := strings.TrimSpace(line)
	return strings.HasPrefix(stripped, "import ") ||
		strings.HasPrefix(stripped, "from ") ||
		stripped == loggerInit
}

func matchRule(lines []string, i int) (rule, bool) {
	for _, r := range rules {
		if r.anchor(lines, i) {
			return r, true
		}
	}
	return rule{}, false
}
