package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// ==================== 弹窗构造 ====================

func textInputRow(customID, label string, style discordgo.TextInputStyle, required bool, maxLength int, placeholder string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:    customID,
			Label:       label,
			Style:       style,
			Required:    required,
			MaxLength:   maxLength,
			Placeholder: placeholder,
		},
	}}
}

func (b *Bot) respondModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID, title string, rows ...discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: rows,
		},
	})
	if err != nil {
		b.log.Error().Err(err).Str("modal", customID).Msg("打开弹窗失败")
	}
}

// modalValues 按 customID 摊平弹窗输入
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	out := make(map[string]string)
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok {
				out[input.CustomID] = strings.TrimSpace(input.Value)
			}
		}
	}
	return out
}

// ==================== PIX ====================

func (b *Bot) compPixModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	b.respondModal(s, i, "modal:pix", "Configurar PIX",
		textInputRow("pix", "Informações do PIX", discordgo.TextInputParagraph, true, 1000,
			"Chave PIX, nome do titular, instruções..."),
	)
}

func (b *Bot) modalPixSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := modalValues(i.ModalSubmitData())
	if err := b.storefront.SetPixInfo(context.Background(), values["pix"]); err != nil {
		b.log.Error().Err(err).Msg("保存 PIX 信息失败")
		b.respondEphemeral(s, i, "❌ Não foi possível salvar o PIX.")
		return
	}
	b.respondEphemeral(s, i, "✅ Informações de PIX atualizadas!")
}

// ==================== 商品创建 ====================

func (b *Bot) compProductModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	b.respondModal(s, i, "modal:produto", "Criar Produto",
		textInputRow("titulo", "Título", discordgo.TextInputShort, true, 100, "Nitro Gaming 1 mês"),
		textInputRow("descricao", "Descrição", discordgo.TextInputParagraph, true, 1000, "O que o comprador recebe"),
		textInputRow("preco", "Preço", discordgo.TextInputShort, true, 10, "29,90"),
		textInputRow("imagem", "URL da imagem (opcional)", discordgo.TextInputShort, false, 500, "https://..."),
	)
}

func (b *Bot) modalProductSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := modalValues(i.ModalSubmitData())
	id, product, err := b.catalog.CreateProduct(context.Background(), service.CreateProductInput{
		Titulo:    values["titulo"],
		Descricao: values["descricao"],
		Preco:     values["preco"],
		ImagemURL: values["imagem"],
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			b.respondEphemeral(s, i, "❌ Dados inválidos! Confira o preço (ex: 29,90) e a URL da imagem.")
			return
		}
		b.log.Error().Err(err).Msg("创建商品失败")
		b.respondEphemeral(s, i, "❌ Não foi possível criar o produto.")
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Produto **%s** criado! (`%s`)\nUse **Enviar Produto** para publicar.", product.Titulo, id))
}

// ==================== 套组草稿 ====================

func (b *Bot) compDraftModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	b.respondModal(s, i, "modal:drop", "Criar Drop",
		textInputRow("titulo", "Título do painel", discordgo.TextInputShort, true, 100, "Drops da semana"),
		textInputRow("descricao", "Descrição do painel", discordgo.TextInputParagraph, true, 1000, "Escolha sua opção abaixo"),
		textInputRow("emoji", "Emoji do painel (opcional)", discordgo.TextInputShort, false, 10, "📦"),
		textInputRow("imagem", "URL da imagem (opcional)", discordgo.TextInputShort, false, 500, "https://..."),
	)
}

// modalDraftSubmit 开草稿会话；同一操作者已有草稿时报冲突并给出指引
func (b *Bot) modalDraftSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	staff := interactionUser(i)
	if staff == nil {
		return
	}
	values := modalValues(i.ModalSubmitData())

	sessionID, err := b.drafts.Open(staff.ID, service.PanelMeta{
		Titulo:    values["titulo"],
		Descricao: values["descricao"],
		Emoji:     values["emoji"],
		ImagemURL: values["imagem"],
	})
	if err != nil {
		if errors.Is(err, service.ErrDraftConflict) {
			b.respondEphemeral(s, i, "❌ Você já tem um rascunho em andamento! Finalize ou cancele antes de abrir outro.")
			return
		}
		b.respondEphemeral(s, i, "❌ Não foi possível abrir o rascunho.")
		return
	}

	session, err := b.drafts.Get(sessionID)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Não foi possível abrir o rascunho.")
		return
	}
	b.respondEphemeralEmbed(s, i, draftEmbed(sessionID, session.Bundle), draftButtons(sessionID))
}

// compDraftAddOption "Adicionar opção" -> 选项弹窗
func (b *Bot) compDraftAddOption(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessionID := customIDArg(i.MessageComponentData().CustomID)
	b.respondModal(s, i, "modal:opcao:"+sessionID, "Adicionar Opção",
		textInputRow("nome", "Nome", discordgo.TextInputShort, true, 100, "1 mês"),
		textInputRow("preco", "Preço", discordgo.TextInputShort, true, 10, "9,90"),
		textInputRow("descricao", "Descrição (opcional)", discordgo.TextInputShort, false, 100, "Valor: 9,90"),
		textInputRow("emoji", "Emoji (opcional)", discordgo.TextInputShort, false, 10, "💎"),
	)
}

func (b *Bot) modalOptionSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	sessionID := customIDArg(data.CustomID)
	values := modalValues(data)

	err := b.drafts.AddOption(sessionID, service.OptionMeta{
		Nome:      values["nome"],
		Descricao: values["descricao"],
		Preco:     values["preco"],
		Emoji:     values["emoji"],
	})
	if err != nil {
		b.respondEphemeral(s, i, "❌ Rascunho não encontrado. Abra outro com o painel /setup.")
		return
	}

	session, err := b.drafts.Get(sessionID)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Rascunho não encontrado. Abra outro com o painel /setup.")
		return
	}
	b.respondEphemeralEmbed(s, i, draftEmbed(sessionID, session.Bundle), draftButtons(sessionID))
}

// compDraftFinish 提交草稿入目录
func (b *Bot) compDraftFinish(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessionID := customIDArg(i.MessageComponentData().CustomID)
	bundleID, err := b.drafts.Commit(context.Background(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCollection):
			b.respondEphemeral(s, i, "❌ Adicione pelo menos uma opção antes de finalizar!")
		case errors.Is(err, service.ErrNotFound):
			b.respondEphemeral(s, i, "❌ Rascunho não encontrado. Abra outro com o painel /setup.")
		default:
			b.log.Error().Err(err).Str("session", sessionID).Msg("提交草稿失败")
			b.respondEphemeral(s, i, "❌ Não foi possível finalizar o drop.")
		}
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Drop criado! (`%s`)\nUse **Enviar Drop** para publicar.", bundleID))
}

// compDraftCancel 放弃草稿
func (b *Bot) compDraftCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sessionID := customIDArg(i.MessageComponentData().CustomID)
	b.drafts.Discard(sessionID)
	b.respondEphemeral(s, i, "🗑️ Rascunho descartado.")
}
