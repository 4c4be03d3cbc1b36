package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// ==================== 设置面板：分类 ====================

// compCategoryPicker 列出服务器的分类频道供选择
func (b *Bot) compCategoryPicker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	channels, err := s.GuildChannels(i.GuildID)
	if err != nil {
		b.log.Error().Err(err).Msg("拉取频道列表失败")
		b.respondEphemeral(s, i, "❌ Não consegui listar as categorias.")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, 25)
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildCategory {
			continue
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: ch.Name,
			Value: ch.ID,
			Emoji: &discordgo.ComponentEmoji{Name: "📁"},
		})
		if len(options) == 25 { // discord 下拉上限
			break
		}
	}
	if len(options) == 0 {
		b.respondEphemeral(s, i, "❌ Este servidor não tem categorias!")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📁 Categoria de vendas",
		Description: "Escolha a categoria onde os carrinhos serão criados.",
		Color:       colorBlue,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "setup:categoriasel",
				Placeholder: "Escolha uma categoria",
				Options:     options,
			},
		}},
	}
	b.respondEphemeralEmbed(s, i, embed, components)
}

// compCategorySelected 保存选中的分类
func (b *Bot) compCategorySelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhuma categoria selecionada.")
		return
	}
	if err := b.storefront.SetCategory(context.Background(), values[0]); err != nil {
		b.log.Error().Err(err).Msg("保存分类失败")
		b.respondEphemeral(s, i, "❌ Não foi possível salvar a categoria.")
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Categoria de vendas definida: <#%s>", values[0]))
}

// ==================== 设置面板：发布选择器 ====================

// compProductPublishPicker 商品发布：先选哪个商品
func (b *Bot) compProductPublishPicker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	entries, err := b.catalog.ListProducts(context.Background())
	if err != nil {
		b.respondEphemeral(s, i, "❌ Não foi possível carregar os produtos.")
		return
	}
	if len(entries) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhum produto cadastrado!")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, 25)
	for _, entry := range entries {
		options = append(options, discordgo.SelectMenuOption{
			Label:       entry.Product.Titulo,
			Description: "R$ " + entry.Product.Preco,
			Value:       entry.ID,
			Emoji:       &discordgo.ComponentEmoji{Name: "📦"},
		})
		if len(options) == 25 {
			break
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📤 Enviar produto",
		Description: "Escolha o produto para publicar neste canal.",
		Color:       colorBlue,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "publicar:produto",
				Placeholder: "Escolha um produto",
				Options:     options,
			},
		}},
	}
	b.respondEphemeralEmbed(s, i, embed, components)
}

// compBundlePublishPicker 套组发布：先选哪个 drop
func (b *Bot) compBundlePublishPicker(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	entries, err := b.catalog.ListBundles(context.Background())
	if err != nil {
		b.respondEphemeral(s, i, "❌ Não foi possível carregar os drops.")
		return
	}
	if len(entries) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhum drop cadastrado!")
		return
	}

	options := make([]discordgo.SelectMenuOption, 0, 25)
	for _, entry := range entries {
		options = append(options, discordgo.SelectMenuOption{
			Label:       entry.Bundle.TituloPainel,
			Description: fmt.Sprintf("%d opções", len(entry.Bundle.Opcoes)),
			Value:       entry.ID,
			Emoji:       &discordgo.ComponentEmoji{Name: "💎"},
		})
		if len(options) == 25 {
			break
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📤 Enviar drop",
		Description: "Escolha o drop para publicar neste canal.",
		Color:       colorBlue,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    "publicar:drop",
				Placeholder: "Escolha um drop",
				Options:     options,
			},
		}},
	}
	b.respondEphemeralEmbed(s, i, embed, components)
}

// compProductSelected 把商品面板发到当前频道
func (b *Bot) compProductSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhum produto selecionado.")
		return
	}
	id := values[0]

	product, err := b.catalog.GetProduct(context.Background(), id)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Produto não encontrado.")
		return
	}

	_, err = s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{productEmbed(id, *product)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Comprar",
					Style:    discordgo.SuccessButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🛒"},
					CustomID: "comprar:produto:" + id,
				},
			}},
		},
	})
	if err != nil {
		b.log.Error().Err(err).Str("product", id).Msg("发布商品面板失败")
		b.respondEphemeral(s, i, "❌ Não consegui publicar o produto neste canal.")
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Produto **%s** publicado!", product.Titulo))
}

// compBundleSelected 把套组面板发到当前频道
func (b *Bot) compBundleSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhum drop selecionado.")
		return
	}
	id := values[0]

	bundle, err := b.catalog.GetBundle(context.Background(), id)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Drop não encontrado.")
		return
	}

	_, err = s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{bundleEmbed(id, *bundle)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				bundleSelectMenu(id, *bundle),
			}},
		},
	})
	if err != nil {
		b.log.Error().Err(err).Str("bundle", id).Msg("发布套组面板失败")
		b.respondEphemeral(s, i, "❌ Não consegui publicar o drop neste canal.")
		return
	}
	b.respondEphemeral(s, i, fmt.Sprintf("✅ Drop **%s** publicado!", bundle.TituloPainel))
}

// compListCatalog 列出目前登记的商品和套组
func (b *Bot) compListCatalog(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.requireStaff(s, i) {
		return
	}
	ctx := context.Background()
	products, _ := b.catalog.ListProducts(ctx)
	bundles, _ := b.catalog.ListBundles(ctx)

	var prodList, dropList strings.Builder
	if len(products) == 0 {
		prodList.WriteString("*nenhum*")
	}
	for _, entry := range products {
		fmt.Fprintf(&prodList, "`%s` — %s (R$ %s)\n", entry.ID, entry.Product.Titulo, entry.Product.Preco)
	}
	if len(bundles) == 0 {
		dropList.WriteString("*nenhum*")
	}
	for _, entry := range bundles {
		fmt.Fprintf(&dropList, "`%s` — %s (%d opções)\n", entry.ID, entry.Bundle.TituloPainel, len(entry.Bundle.Opcoes))
	}

	embed := &discordgo.MessageEmbed{
		Title: "📋 Catálogo",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📦 Produtos", Value: prodList.String()},
			{Name: "💎 Drops", Value: dropList.String()},
		},
	}
	b.respondEphemeralEmbed(s, i, embed, nil)
}

// ==================== 购买 ====================

// compBuyProduct "Comprar" 按钮：为买家开购物车
func (b *Bot) compBuyProduct(s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := customIDArg(i.MessageComponentData().CustomID)
	product, err := b.catalog.GetProduct(context.Background(), id)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Este produto não está mais disponível.")
		return
	}
	b.openCartFor(s, i, id, *product)
}

// compBuyBundleOption 套组下拉：选中的选项合成临时商品后开车
func (b *Bot) compBuyBundleOption(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	id := customIDArg(data.CustomID)
	bundle, err := b.catalog.GetBundle(context.Background(), id)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Este drop não está mais disponível.")
		return
	}
	if len(data.Values) == 0 {
		b.respondEphemeral(s, i, "❌ Nenhuma opção selecionada.")
		return
	}
	idx, err := strconv.Atoi(data.Values[0])
	if err != nil || idx < 0 || idx >= len(bundle.Opcoes) {
		b.respondEphemeral(s, i, "❌ Opção inválida.")
		return
	}

	opt := bundle.Opcoes[idx]
	product := model.Product{
		Titulo:     fmt.Sprintf("%s - %s", bundle.TituloPainel, opt.Nome),
		Descricao:  opt.Descricao,
		Preco:      opt.Preco,
		ImagemURL:  bundle.ImagemURL,
		TipoImagem: bundle.TipoImagem,
	}
	b.openCartFor(s, i, fmt.Sprintf("%s_%d", id, idx), product)
}

// openCartFor 开车并在新频道里发欢迎消息
func (b *Bot) openCartFor(s *discordgo.Session, i *discordgo.InteractionCreate, productID string, product model.Product) {
	buyer := interactionUser(i)
	if buyer == nil {
		return
	}

	cart, err := b.carts.OpenCart(context.Background(), i.GuildID, buyer.ID, buyer.Username, productID, product)
	if err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			b.respondEphemeral(s, i, "❌ A loja ainda não foi configurada! Peça para um admin usar /setup.")
			return
		}
		b.log.Error().Err(err).Str("product", productID).Msg("开购物车失败")
		b.respondEphemeral(s, i, "❌ Não foi possível abrir seu carrinho. Tente novamente.")
		return
	}

	_, err = s.ChannelMessageSendComplex(cart.ChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s>", buyer.ID),
		Embeds:     []*discordgo.MessageEmbed{cartWelcomeEmbed(buyer.ID, product)},
		Components: cartButtons(),
	})
	if err != nil {
		b.log.Error().Err(err).Str("channel", cart.ChannelID).Msg("发送购物车欢迎消息失败")
	}

	b.respondEphemeral(s, i, fmt.Sprintf("🛒 Carrinho aberto! Vai lá: <#%s>", cart.ChannelID))
}

// ==================== 购物车按钮 ====================

// compCartPix 展示 PIX 信息（车内任何人可看）
func (b *Bot) compCartPix(s *discordgo.Session, i *discordgo.InteractionCreate) {
	info, err := b.carts.RevealPayment(context.Background(), i.ChannelID)
	if err != nil {
		b.respondEphemeral(s, i, "❌ Este canal não é um carrinho ativo.")
		return
	}
	embed := &discordgo.MessageEmbed{
		Title:       "💳 Pagamento via PIX",
		Description: info.PixInfo,
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Valor", Value: "R$ " + info.Preco, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Envie o comprovante neste canal após pagar"},
	}
	b.respondEphemeralEmbed(s, i, embed, nil)
}

// compCartApprove 批准支付（所有者/管理员）
func (b *Bot) compCartApprove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	requester := interactionUser(i)
	if requester == nil {
		return
	}
	cart, err := b.carts.Approve(context.Background(), i.ChannelID, requester.ID)
	if err != nil {
		b.respondEphemeral(s, i, cartErrMessage(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Compra aprovada!",
		Description: fmt.Sprintf("<@%s>, sua compra de **%s** foi aprovada!\nObrigado por comprar na Virex Store! 💜",
			cart.BuyerID, cart.Product.Titulo),
		Color: colorGreen,
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("回复交互失败")
	}
}

// compCartClose 进入关闭倒计时
func (b *Bot) compCartClose(s *discordgo.Session, i *discordgo.InteractionCreate) {
	requester := interactionUser(i)
	if requester == nil {
		return
	}
	_, err := b.carts.Close(context.Background(), i.ChannelID, requester.ID)
	if err != nil {
		b.respondEphemeral(s, i, cartErrMessage(err))
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "🔒 Carrinho será fechado em 5 segundos...",
		},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("回复交互失败")
	}
}

// cartErrMessage 购物车错误 -> 用户可读文案
func cartErrMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return "❌ Você não tem permissão para usar isso!"
	case errors.Is(err, service.ErrCartClosing):
		return "❌ Este carrinho já está sendo fechado."
	case errors.Is(err, service.ErrNotFound):
		return "❌ Este canal não é um carrinho ativo."
	default:
		return "❌ Algo deu errado. Tente novamente."
	}
}

// interactionUser 触发者（服务器内走 Member，私聊走 User）
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}
