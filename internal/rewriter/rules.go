package rewriter

import "strings"

// rule replaces the block starting at an anchor line. consume returns the
// index of the first line after the block; it always advances past i.
type rule struct {
	name        string
	anchor      func(lines []string, i int) bool
	consume     func(lines []string, i int) int
	replacement []string
}

var rules = []rule{
	{
		name:    "setup-docstring",
		anchor:  lineContains("def setup_commands(bot):"),
		consume: skipDocstringLine,
		replacement: []string{
			"def setup_commands(bot):",
			`    """Configura todos os comandos do bot"""`,
			"",
		},
	},
	{
		name:    "pontos-signature",
		anchor:  lineContains("@bot.command(name='pontos', aliases=['p'])"),
		consume: skipLines(2),
		replacement: []string{
			"    @bot.command(name='pontos', aliases=['p'])",
			"    async def pontos_command(ctx, member: Optional[discord.Member] = None):",
			`        """`,
			"        Mostra os pontos do autor ou de outro usuário mencionado",
			"        ",
			"        Args:",
			"            member: Membro opcional para consultar pontos",
			`        """`,
		},
	},
	{
		name:    "permission-helper",
		anchor:  lineContains("is_admin = ctx.author.display_name in admin_users"),
		consume: skipPermissionCheck,
		replacement: []string{
			"        if not await check_permissions(ctx, bot):",
			"            await ctx.send('❌ Você não tem permissão para usar este comando.')",
			"            return",
		},
	},
	{
		name:    "member-guard",
		anchor:  resetUserMemberGuard,
		consume: skipIndentedBlock,
		replacement: []string{
			"        if member is None:",
			"            await ctx.send('❌ Você precisa mencionar um usuário válido.')",
			"            return",
		},
	},
}

func lineContains(substr string) func([]string, int) bool {
	return func(lines []string, i int) bool {
		return strings.Contains(lines[i], substr)
	}
}

func skipLines(n int) func([]string, int) int {
	return func(lines []string, i int) int {
		return min(i+n, len(lines))
	}
}

// skipDocstringLine consumes the anchor and a one-line docstring right
// after it, if there is one.
func skipDocstringLine(lines []string, i int) int {
	next := i + 1
	if next < len(lines) {
		s := strings.TrimSpace(lines[next])
		if len(s) >= 6 && strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) {
			return next + 1
		}
	}
	return next
}

// skipPermissionCheck consumes the anchor and the directly following lines
// that belong to the inline moderator check.
func skipPermissionCheck(lines []string, i int) int {
	j := i + 1
	for j < len(lines) &&
		(strings.Contains(lines[j], "is_moderator") ||
			strings.Contains(lines[j], "if not is_admin and not is_moderator")) {
		j++
	}
	return j
}

// guardLookback bounds how far above a member guard the command decorator
// may sit.
const guardLookback = 10

// resetUserMemberGuard matches "if not member:" inside the resetuser command,
// identified by the nearest command decorator within guardLookback lines.
func resetUserMemberGuard(lines []string, i int) bool {
	if strings.TrimSpace(lines[i]) != "if not member:" {
		return false
	}
	for j := i - 1; j >= max(0, i-guardLookback); j-- {
		if strings.Contains(lines[j], "@bot.command(") {
			return strings.Contains(lines[j], "resetuser")
		}
	}
	return false
}

// skipIndentedBlock consumes the anchor and every following line indented
// deeper than it. Blank lines end the block.
func skipIndentedBlock(lines []string, i int) int {
	base := indentOf(lines[i])
	j := i + 1
	for j < len(lines) && strings.TrimSpace(lines[j]) != "" && indentOf(lines[j]) > base {
		j++
	}
	return j
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
