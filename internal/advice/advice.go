// Package advice holds the static refactoring and security guidance that
// accompanies every analysis of the bot source.
package advice

// Suggestion is a refactoring proposal with before/after code.
type Suggestion struct {
	Title       string   `json:"title" yaml:"title" toml:"title"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	CodeBefore  string   `json:"code_before" yaml:"code_before" toml:"code_before"`
	CodeAfter   string   `json:"code_after" yaml:"code_after" toml:"code_after"`
	Benefits    []string `json:"benefits" yaml:"benefits" toml:"benefits"`
}

// SecurityFix describes a security problem, its risk and the fix.
type SecurityFix struct {
	Issue string `json:"issue" yaml:"issue" toml:"issue"`
	Risk  string `json:"risk" yaml:"risk" toml:"risk"`
	Fix   string `json:"fix" yaml:"fix" toml:"fix"`
	Code  string `json:"code" yaml:"code" toml:"code"`
}

// RefactoringSuggestions returns the refactoring catalogue. Each call
// returns fresh slices the caller may modify.
func RefactoringSuggestions() []Suggestion {
	return []Suggestion{
		{
			Title:       "Criar função helper para verificação de permissões",
			Description: "A lógica de verificação de admin/moderator está duplicada em vários comandos",
			CodeBefore: `is_admin = ctx.author.display_name in admin_users
is_moderator = any(role.name in moderator_roles for role in ctx.author.roles)

if not is_admin and not is_moderator:
    await ctx.send("❌ Você não tem permissão...")
    return`,
			CodeAfter: `async def check_permissions(ctx, bot) -> bool:
    """Helper function para verificar permissões"""
    admin_users = bot.config.get('permissions', {}).get('admin_users', [])
    moderator_roles = bot.config.get('permissions', {}).get('moderator_roles', [])
    
    is_admin = ctx.author.id in admin_users  # Usar ID é mais seguro
    is_moderator = any(role.name in moderator_roles for role in ctx.author.roles)
    
    return is_admin or is_moderator

# Nos comandos:
if not await check_permissions(ctx, bot):
    await ctx.send("❌ Você não tem permissão...")
    return`,
			Benefits: []string{
				"Reduz duplicação de código",
				"Melhora segurança usando IDs",
				"Facilita manutenção",
				"Torna testes mais fáceis",
			},
		},
		{
			Title:       "Definir constantes para valores numéricos",
			Description: "Números mágicos tornam o código menos manutenível",
			CodeBefore: `if limit > 25:
    limit = 25
elif limit < 1:
    limit = 10`,
			CodeAfter: `# No topo do arquivo
MAX_RANKING_LIMIT = 25
DEFAULT_RANKING_LIMIT = 10
MIN_RANKING_LIMIT = 1

# No código
if limit > MAX_RANKING_LIMIT:
    limit = MAX_RANKING_LIMIT
elif limit < MIN_RANKING_LIMIT:
    limit = DEFAULT_RANKING_LIMIT`,
			Benefits: []string{
				"Facilita alteração de valores",
				"Torna o código mais legível",
				"Reduz erros de digitação",
				"Melhora manutenibilidade",
			},
		},
		{
			Title:       "Melhorar tratamento de erros específicos",
			Description: "Capturar exceções específicas em vez de Exception genérica",
			CodeBefore: `except Exception as e:
    logger.error(f"Error in pontos command: {e}")
    await ctx.send("❌ Ocorreu um erro ao buscar os dados de pontos.")`,
			CodeAfter: `except aiosqlite.Error as e:
    logger.error(f"Database error in pontos command: {e}")
    await ctx.send("❌ Erro no banco de dados. Tente novamente.")
except discord.HTTPException as e:
    logger.error(f"Discord API error in pontos command: {e}")
    await ctx.send("❌ Erro de comunicação com Discord.")
except Exception as e:
    logger.error(f"Unexpected error in pontos command: {e}")
    await ctx.send("❌ Erro inesperado. Contacte um administrador.")`,
			Benefits: []string{
				"Tratamento específico para cada tipo de erro",
				"Mensagens mais úteis para usuários",
				"Melhor debugging",
				"Recuperação mais inteligente",
			},
		},
	}
}

// SecurityFixes returns the security fix catalogue.
func SecurityFixes() []SecurityFix {
	return []SecurityFix{
		{
			Issue: "Verificação de permissão insegura usando display_name",
			Risk:  "Usuários podem alterar display_name e burlar verificações",
			Fix:   "Usar ctx.author.id em vez de ctx.author.display_name",
			Code: `# ANTES (inseguro):
is_admin = ctx.author.display_name in admin_users

# DEPOIS (seguro):
admin_user_ids = bot.config.get('permissions', {}).get('admin_user_ids', [])
is_admin = ctx.author.id in admin_user_ids`,
		},
		{
			Issue: "Ausência de rate limiting em comandos",
			Risk:  "Usuários podem fazer spam de comandos sobrecarregando o bot",
			Fix:   "Implementar cooldowns nos comandos",
			Code: `from discord.ext import commands

@commands.cooldown(1, 5, commands.BucketType.user)
@bot.command(name='pontos')
async def pontos_command(ctx, member: Optional[discord.Member] = None):
    # comando aqui...`,
		},
	}
}
