package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// embed 配色
const (
	colorBlue   = 0x3498db
	colorGreen  = 0x2ecc71
	colorRed    = 0xe74c3c
	colorGold   = 0xf1c40f
	colorOrange = 0xe67e22
)

// productEmbed 商品售卖面板
func productEmbed(id string, p model.Product) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       p.Titulo,
		Description: p.Descricao,
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Valor", Value: fmt.Sprintf("R$ %s", p.Preco), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Virex Store • " + id},
	}
	if p.ImagemURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: p.ImagemURL}
	}
	return embed
}

// bundleEmbed 下拉套组面板
func bundleEmbed(id string, bundle model.Bundle) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s %s", bundle.EmojiPainel, bundle.TituloPainel),
		Description: bundle.DescricaoPainel,
		Color:       colorGold,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Virex Store • " + id},
	}
	if bundle.ImagemURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: bundle.ImagemURL}
	}
	return embed
}

// bundleSelectMenu 套组的选项下拉菜单，value 为选项下标
func bundleSelectMenu(id string, bundle model.Bundle) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(bundle.Opcoes))
	for idx, opt := range bundle.Opcoes {
		options = append(options, discordgo.SelectMenuOption{
			Label:       opt.Nome,
			Description: opt.Descricao,
			Value:       fmt.Sprintf("%d", idx),
			Emoji:       &discordgo.ComponentEmoji{Name: opt.Emoji},
		})
	}
	return discordgo.SelectMenu{
		CustomID:    "comprar:drop:" + id,
		Placeholder: "Escolha uma opção para comprar",
		Options:     options,
	}
}

// cartWelcomeEmbed 购物车开场消息
func cartWelcomeEmbed(buyerID string, p model.Product) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🛒 Carrinho aberto!",
		Description: fmt.Sprintf("Olá <@%s>! Você está comprando:\n\n**%s**\n%s",
			buyerID, p.Titulo, p.Descricao),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Valor", Value: fmt.Sprintf("R$ %s", p.Preco), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Use os botões abaixo para continuar"},
	}
}

// cartButtons 购物车操作按钮
func cartButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Pagar com PIX", Style: discordgo.SuccessButton, Emoji: &discordgo.ComponentEmoji{Name: "💳"}, CustomID: "carrinho:pix"},
			discordgo.Button{Label: "Aprovar compra", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "✅"}, CustomID: "carrinho:aprovar"},
			discordgo.Button{Label: "Fechar carrinho", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "🔒"}, CustomID: "carrinho:fechar"},
		}},
	}
}

// draftEmbed 草稿会话面板，列出已添加的选项
func draftEmbed(session string, meta model.Bundle) *discordgo.MessageEmbed {
	var sb strings.Builder
	if len(meta.Opcoes) == 0 {
		sb.WriteString("*Nenhuma opção ainda.*")
	} else {
		for _, opt := range meta.Opcoes {
			fmt.Fprintf(&sb, "%s **%s** — R$ %s\n", opt.Emoji, opt.Nome, opt.Preco)
		}
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📝 Rascunho: %s", meta.TituloPainel),
		Description: sb.String(),
		Color:       colorOrange,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Sessão " + session},
	}
}

// draftButtons 草稿操作按钮
func draftButtons(session string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Adicionar opção", Style: discordgo.PrimaryButton, Emoji: &discordgo.ComponentEmoji{Name: "➕"}, CustomID: "draft:add:" + session},
			discordgo.Button{Label: "Finalizar", Style: discordgo.SuccessButton, Emoji: &discordgo.ComponentEmoji{Name: "✅"}, CustomID: "draft:fim:" + session},
			discordgo.Button{Label: "Cancelar", Style: discordgo.DangerButton, Emoji: &discordgo.ComponentEmoji{Name: "🗑️"}, CustomID: "draft:cancelar:" + session},
		}},
	}
}
