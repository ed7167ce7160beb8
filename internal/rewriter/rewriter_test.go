package rewriter

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func loadFixture(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "fixtures", "bot", "commands.py")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	return string(data)
}

func TestRewriteFixture(t *testing.T) {
	out := Rewrite(loadFixture(t))

	if !strings.HasPrefix(out, strings.Join(header, "\n")) {
		t.Fatal("output must start with the header block")
	}

	counts := []struct {
		substr string
		want   int
	}{
		{"import aiosqlite", 1},
		{"logger = logging.getLogger(__name__)", 1},
		{"check_permissions(ctx, bot)", 3},
		{`"""Configura todos os comandos do bot"""`, 1},
		{"async def pontos_command(ctx, member: Optional[discord.Member] = None):", 1},
		{"limit > MAX_RANKING_LIMIT", 1},
		{"limit = MAX_RANKING_LIMIT", 1},
		{"limit = DEFAULT_RANKING_LIMIT", 1},
		{"timeout=CONFIRMATION_TIMEOUT", 2},
		{"if member is None:", 1},
		{"ctx.author.display_name in admin_users", 0},
		{"is_moderator = any(", 1},
		{"if not member:", 0},
		{"Você precisa mencionar um usuário válido", 1},
		{"timeout=30.0", 0},
		{"member: discord.Member | None = None", 0},
	}
	for _, tt := range counts {
		if got := strings.Count(out, tt.substr); got != tt.want {
			t.Errorf("count(%q) = %d, want %d", tt.substr, got, tt.want)
		}
	}
}

func TestRewriteWithoutAnchors(t *testing.T) {
	in := "x = 1\n    y = compute(x)\n"
	out := Rewrite(in)

	want := strings.Join(header, "\n") + "\n" + in
	if out != want {
		t.Errorf("Rewrite changed non-anchor lines:\n%s", out)
	}
}

func TestRewriteDropsImports(t *testing.T) {
	out := Rewrite("import os\nfrom x import y\n    import aiosqlite\nlogger = logging.getLogger(__name__)\nkeep = True")
	body := strings.TrimPrefix(out, strings.Join(header, "\n")+"\n")
	if body != "keep = True" {
		t.Errorf("body = %q, want only the non-import line", body)
	}
}

func TestRewriteEmpty(t *testing.T) {
	if got, want := Rewrite(""), strings.Join(header, "\n")+"\n"; got != want {
		t.Errorf("Rewrite(\"\") = %q, want header only", got)
	}
}

func TestMemberGuardOnlyInResetUser(t *testing.T) {
	in := strings.Join([]string{
		"    @bot.command(name='pontos')",
		"    async def pontos_command(ctx, member):",
		"        if not member:",
		"            return",
	}, "\n")
	if out := Rewrite(in); !strings.Contains(out, "if not member:") {
		t.Error("guard outside resetuser must be left alone")
	}

	in = strings.Join([]string{
		"    @bot.command(name='resetuser')",
		"    async def reset_user_command(ctx, member):",
		"        if not member:",
		"            await ctx.send('x')",
		"            return",
		"        done = True",
	}, "\n")
	out := Rewrite(in)
	if strings.Contains(out, "if not member:") || strings.Contains(out, "ctx.send('x')") {
		t.Errorf("resetuser guard block not replaced:\n%s", out)
	}
	if !strings.HasSuffix(out, "            return\n        done = True") {
		t.Errorf("lines after the guard block must be kept:\n%s", out)
	}
}

func TestMemberGuardDecoratorWindow(t *testing.T) {
	guardBelow := func(gap int) string {
		lines := []string{
			"    @bot.command(name='resetuser')",
			"    async def reset_user_command(ctx, member):",
		}
		for len(lines) < gap {
			lines = append(lines, "        pass")
		}
		return strings.Join(append(lines, "        if not member:", "            return"), "\n")
	}

	tests := []struct {
		gap      int
		replaced bool
	}{
		{2, true},
		{10, true},
		{11, false},
		{17, false},
	}
	for _, tt := range tests {
		out := Rewrite(guardBelow(tt.gap))
		if replaced := !strings.Contains(out, "if not member:"); replaced != tt.replaced {
			t.Errorf("guard %d lines below decorator: replaced = %v, want %v", tt.gap, replaced, tt.replaced)
		}
	}
}

func TestPermissionRuleConsumesModeratorLines(t *testing.T) {
	lines := []string{
		"        is_admin = ctx.author.display_name in admin_users",
		"        is_moderator = any(r for r in roles)",
		"        if not is_admin and not is_moderator:",
		"            return",
	}
	if got := skipPermissionCheck(lines, 0); got != 3 {
		t.Errorf("skipPermissionCheck = %d, want 3", got)
	}
}

func TestRuleConsumeAlwaysAdvances(t *testing.T) {
	lines := []string{"if not member:"}
	for _, r := range rules {
		if got := r.consume(lines, 0); got <= 0 {
			t.Errorf("rule %s consume did not advance: %d", r.name, got)
		}
	}
}
