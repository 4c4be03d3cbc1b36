package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 日志投递 ====================

// emitLog 按路由表把事件 embed 投到配置的频道；未配置则静默
func (b *Bot) emitLog(s *discordgo.Session, guildID string, eventType model.LogEventType, embed *discordgo.MessageEmbed) {
	channelID, ok := b.routes.Resolve(context.Background(), guildID, eventType)
	if !ok {
		return
	}
	embed.Timestamp = b.now().Format("2006-01-02T15:04:05-07:00")
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.log.Error().Err(err).Str("channel", channelID).Str("type", string(eventType)).
			Msg("投递日志消息失败")
	}
}

// ==================== 成员进出 ====================

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.emitLog(s, m.GuildID, model.LogEventJoin, &discordgo.MessageEmbed{
		Title:       "📥 Membro entrou",
		Description: fmt.Sprintf("<@%s> (`%s`) entrou no servidor.", m.User.ID, m.User.Username),
		Color:       colorGreen,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
	})
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.emitLog(s, m.GuildID, model.LogEventLeave, &discordgo.MessageEmbed{
		Title:       "📤 Membro saiu",
		Description: fmt.Sprintf("**%s** saiu do servidor.", m.User.Username),
		Color:       colorOrange,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")},
	})
}

func (b *Bot) onGuildBanAdd(s *discordgo.Session, ban *discordgo.GuildBanAdd) {
	b.emitLog(s, ban.GuildID, model.LogEventBan, &discordgo.MessageEmbed{
		Title:       "🔨 Membro banido",
		Description: fmt.Sprintf("**%s** foi banido do servidor.", ban.User.Username),
		Color:       colorRed,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: ban.User.AvatarURL("")},
	})
}

// ==================== 消息 ====================

func (b *Bot) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if m.GuildID == "" {
		return
	}
	// 未被 state 缓存的消息拿不到内容，只报频道
	desc := fmt.Sprintf("Mensagem apagada em <#%s>.", m.ChannelID)
	if m.BeforeDelete != nil {
		author := "?"
		if m.BeforeDelete.Author != nil {
			if m.BeforeDelete.Author.Bot {
				return
			}
			author = m.BeforeDelete.Author.Username
		}
		desc = fmt.Sprintf("Mensagem de **%s** apagada em <#%s>:\n>>> %s",
			author, m.ChannelID, truncate(m.BeforeDelete.Content, 1000))
	}
	b.emitLog(s, m.GuildID, model.LogEventDelete, &discordgo.MessageEmbed{
		Title:       "🗑️ Mensagem apagada",
		Description: desc,
		Color:       colorRed,
	})
}

func (b *Bot) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	before := "*conteúdo anterior não disponível*"
	if m.BeforeUpdate != nil && m.BeforeUpdate.Content != "" {
		if m.BeforeUpdate.Content == m.Content {
			return // embed 展开等伪编辑
		}
		before = truncate(m.BeforeUpdate.Content, 500)
	}
	b.emitLog(s, m.GuildID, model.LogEventEdit, &discordgo.MessageEmbed{
		Title:       "✏️ Mensagem editada",
		Description: fmt.Sprintf("**%s** editou uma mensagem em <#%s>.", m.Author.Username, m.ChannelID),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Antes", Value: before},
			{Name: "Depois", Value: truncate(m.Content, 500)},
		},
	})
}

// ==================== 语音 ====================

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.GuildID == "" || v.UserID == s.State.User.ID {
		return
	}

	var before string
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}
	after := v.ChannelID
	if before == after {
		return // mute/deaf 等状态变化，不是进出
	}

	var desc string
	switch {
	case before == "":
		desc = fmt.Sprintf("<@%s> entrou em <#%s>.", v.UserID, after)
	case after == "":
		desc = fmt.Sprintf("<@%s> saiu de <#%s>.", v.UserID, before)
	default:
		desc = fmt.Sprintf("<@%s> mudou de <#%s> para <#%s>.", v.UserID, before, after)
	}
	b.emitLog(s, v.GuildID, model.LogEventVoice, &discordgo.MessageEmbed{
		Title:       "🔊 Movimentação de voz",
		Description: desc,
		Color:       colorBlue,
	})
}

// ==================== 付款凭证 ====================

// onMessageCreate 购物车频道里买家发的附件当作付款凭证，
// 艾特所有者和最多三位管理员来人工审核
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || len(m.Attachments) == 0 {
		return
	}
	cart, ok := b.carts.Lookup(m.ChannelID)
	if !ok || m.Author.ID != cart.BuyerID {
		return
	}

	mentions := b.reviewerMentions(s, m.GuildID)
	content := "📎 Comprovante recebido!"
	if len(mentions) > 0 {
		content = fmt.Sprintf("📎 Comprovante recebido! %s confiram o pagamento.", strings.Join(mentions, " "))
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, content); err != nil {
		b.log.Error().Err(err).Str("channel", m.ChannelID).Msg("通知审核人失败")
	}
}

// reviewerMentions 所有者 + 最多三位管理员的 @ 列表
func (b *Bot) reviewerMentions(s *discordgo.Session, guildID string) []string {
	guild, err := s.State.Guild(guildID)
	if err != nil || guild == nil {
		return nil
	}

	adminRoles := make(map[string]bool)
	for _, role := range guild.Roles {
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			adminRoles[role.ID] = true
		}
	}

	mentions := []string{fmt.Sprintf("<@%s>", guild.OwnerID)}
	admins := 0
	for _, member := range guild.Members {
		if admins == 3 {
			break
		}
		if member.User == nil || member.User.Bot || member.User.ID == guild.OwnerID {
			continue
		}
		for _, roleID := range member.Roles {
			if adminRoles[roleID] {
				mentions = append(mentions, fmt.Sprintf("<@%s>", member.User.ID))
				admins++
				break
			}
		}
	}
	return mentions
}

// truncate 超长文本截断（日志 embed 字段上限保护）
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
