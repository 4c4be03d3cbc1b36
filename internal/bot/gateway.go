package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ==================== 频道网关 ====================

// channelGateway service.ChannelGateway 的 discord 实现
type channelGateway struct {
	session *discordgo.Session
}

// CreateCartChannel 在分类下建私密文字频道：@everyone 不可见，
// 买家和机器人可见可发言。管理员靠 Administrator 权限天然可见。
func (g *channelGateway) CreateCartChannel(ctx context.Context, guildID, categoryID, buyerID, name string) (string, error) {
	allow := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles)

	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone 角色 ID 与 guild ID 相同
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: int64(discordgo.PermissionViewChannel),
		},
		{
			ID:    buyerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: allow,
		},
	}
	if g.session.State != nil && g.session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    g.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: allow,
		})
	}

	channel, err := g.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create channel %q: %w", name, err)
	}
	return channel.ID, nil
}

func (g *channelGateway) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := g.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete channel %s: %w", channelID, err)
	}
	return nil
}

// ==================== 特权判定 ====================

// guildAuthorizer service.Authorizer 的 discord 实现：
// 服务器所有者或带 Administrator 权限的成员
type guildAuthorizer struct {
	session *discordgo.Session
}

func (a *guildAuthorizer) IsPrivileged(guildID, userID string) bool {
	guild, err := a.session.State.Guild(guildID)
	if err != nil || guild == nil {
		return false
	}
	if guild.OwnerID == userID {
		return true
	}

	member, err := a.session.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = a.session.GuildMember(guildID, userID)
		if err != nil || member == nil {
			return false
		}
	}
	for _, roleID := range member.Roles {
		for _, role := range guild.Roles {
			if role.ID == roleID && role.Permissions&discordgo.PermissionAdministrator != 0 {
				return true
			}
		}
	}
	return false
}
