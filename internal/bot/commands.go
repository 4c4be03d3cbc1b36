package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 命令定义 ====================

func commandDefinitions() []*discordgo.ApplicationCommand {
	logTypeChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(model.AllLogEventTypes))
	for _, t := range model.AllLogEventTypes {
		logTypeChoices = append(logTypeChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(t),
			Value: string(t),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ajudavirexstore",
			Description: "Mostra todos os comandos disponíveis",
		},
		{
			Name:        "setuplogs",
			Description: "Configura o canal de logs para um tipo de evento",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tipo",
					Description: "Tipo de evento",
					Required:    true,
					Choices:     logTypeChoices,
				},
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "canal",
					Description:  "Canal de destino",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
		{
			Name:        "botvoz",
			Description: "Coloca o bot em um canal de voz",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "canal",
					Description:  "Canal de voz",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "imagem",
					Description: "URL da imagem de confirmação",
					Required:    false,
				},
			},
		},
		{
			Name:        "banfake",
			Description: "Simula um banimento (brincadeira, ninguém é banido)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "membro",
					Description: "Membro alvo",
					Required:    true,
				},
			},
		},
		{
			Name:        "setup",
			Description: "Abre o painel de configuração da loja",
		},
		{
			Name:        "enviarproduto",
			Description: "Publica um produto em um canal",
		},
		{
			Name:        "enviardrop",
			Description: "Publica um drop em um canal",
		},
	}
}

// registerCommands 注册 slash 命令；guildID 非空时只注册到该 guild（即时生效）
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	_, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, commandDefinitions())
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.Info().Str("guild", b.guildID).Msg("命令已注册")
	return nil
}

// ==================== 权限 ====================

// isStaff 管理员或服务器所有者
func (b *Bot) isStaff(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	guild, err := s.State.Guild(i.GuildID)
	if err != nil || guild == nil {
		return false
	}
	return guild.OwnerID == i.Member.User.ID
}

// requireStaff 无权限时回复并返回 false
func (b *Bot) requireStaff(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if b.isStaff(s, i) {
		return true
	}
	b.respondEphemeral(s, i, "❌ Você não tem permissão para usar isso!")
	return false
}

// ==================== /ajudavirexstore ====================

func (b *Bot) cmdHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed := &discordgo.MessageEmbed{
		Title: "📖 Comandos da Virex Store",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/setup", Value: "Painel de configuração da loja (admins)"},
			{Name: "/setuplogs", Value: "Define o canal de logs para um tipo de evento (admins)"},
			{Name: "/enviarproduto", Value: "Publica um produto em um canal (admins)"},
			{Name: "/enviardrop", Value: "Publica um drop em um canal (admins)"},
			{Name: "/botvoz", Value: "Coloca o bot em um canal de voz (admins)"},
			{Name: "/banfake", Value: "Banimento de mentira para zoar os amigos"},
			{Name: "/ajudavirexstore", Value: "Mostra esta mensagem"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Virex Store"},
	}
	b.respondEphemeralEmbed(s, i, embed, nil)
}

// ==================== /setuplogs ====================

func (b *Bot) cmdSetupLogs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	opts := commandOptions(i)
	eventType := model.LogEventType(opts["tipo"].StringValue())
	channel := opts["canal"].ChannelValue(s)
	if !eventType.Valid() || channel == nil {
		b.respondEphemeral(s, i, "❌ Tipo de evento ou canal inválido!")
		return
	}
	if err := b.routes.Configure(context.Background(), i.GuildID, eventType, channel.ID); err != nil {
		b.log.Error().Err(err).Msg("保存日志路由失败")
		b.respondEphemeral(s, i, "❌ Não foi possível salvar a configuração.")
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Logs de **%s** serão enviados em <#%s>", eventType, channel.ID))
}

// ==================== /botvoz ====================

func (b *Bot) cmdVoiceJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	opts := commandOptions(i)
	channel := opts["canal"].ChannelValue(s)
	if channel == nil {
		b.respondEphemeral(s, i, "❌ Canal inválido!")
		return
	}

	// mute=false deaf=true：只占位，不收音
	if _, err := s.ChannelVoiceJoin(i.GuildID, channel.ID, false, true); err != nil {
		b.log.Error().Err(err).Str("channel", channel.ID).Msg("进入语音频道失败")
		b.respondEphemeral(s, i, "❌ Não consegui entrar no canal de voz.")
		return
	}
	if err := b.storefront.SetVoiceChannel(context.Background(), channel.ID); err != nil {
		b.log.Error().Err(err).Msg("保存语音频道失败")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🔊 Conectado!",
		Description: fmt.Sprintf("Estou no canal <#%s>", channel.ID),
		Color:       colorGreen,
	}
	if imagem, ok := opts["imagem"]; ok {
		if url := strings.TrimSpace(imagem.StringValue()); url != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: url}
		}
	}
	b.respondEphemeralEmbed(s, i, embed, nil)
}

// ==================== /banfake ====================

func (b *Bot) cmdFakeBan(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := commandOptions(i)
	target := opts["membro"].UserValue(s)
	if target == nil {
		b.respondEphemeral(s, i, "❌ Membro inválido!")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🔨 BANIDO!",
		Description: fmt.Sprintf("**%s** foi banido do servidor!\n\n*(mentira, é só zoeira 😂)*", target.Username),
		Color:       colorRed,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")},
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("回复交互失败")
	}
}

// ==================== /setup ====================

func (b *Bot) cmdSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "⚙️ Painel de Configuração",
		Description: "Use os botões abaixo para configurar a loja.",
		Color:       colorBlue,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Categoria", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "📁"}, CustomID: "setup:categoria"},
			discordgo.Button{Label: "PIX", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "💳"}, CustomID: "setup:pix"},
			discordgo.Button{Label: "Criar Produto", Style: discordgo.SuccessButton, Emoji: &discordgo.ComponentEmoji{Name: "📦"}, CustomID: "setup:produto"},
			discordgo.Button{Label: "Criar Drop", Style: discordgo.SuccessButton, Emoji: &discordgo.ComponentEmoji{Name: "💎"}, CustomID: "setup:drop"},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Enviar Produto", Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "📤"}, CustomID: "setup:enviarproduto"},
			discordgo.Button{Label: "Enviar Drop", Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "📤"}, CustomID: "setup:enviardrop"},
			discordgo.Button{Label: "Listar", Style: discordgo.SecondaryButton, Emoji: &discordgo.ComponentEmoji{Name: "📋"}, CustomID: "setup:listar"},
		}},
	}
	b.respondEphemeralEmbed(s, i, embed, components)
}

// ==================== /enviarproduto  /enviardrop ====================

func (b *Bot) cmdPublishProduct(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	b.compProductPublishPicker(s, i)
}

func (b *Bot) cmdPublishBundle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	b.compBundlePublishPicker(s, i)
}

// commandOptions 按名字索引命令选项
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		out[opt.Name] = opt
	}
	return out
}
