package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/repository"
	"github.com/tevis-trtr/Deadpool-store/internal/service"
)

// ==================== Bot ====================

// Bot discord 接入层：注册命令、分发交互、投递日志通知
// 业务规则都在 service 层，这里只做平台 I/O 与文案。
type Bot struct {
	session *discordgo.Session
	log     zerolog.Logger
	loc     *time.Location

	guildID string // 非空时命令只注册到该 guild

	catalog    *service.CatalogService
	drafts     *service.DraftService
	carts      *service.CartService
	storefront repository.StorefrontRepository
	routes     repository.LogRouteRepository

	// 组件交互路由表：customID 前缀 -> 处理函数
	componentHandlers map[string]interactionHandler
	modalHandlers     map[string]interactionHandler
	commandHandlers   map[string]interactionHandler
}

type interactionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// Deps Bot 依赖集合。Carts 在 Bot 创建后经 AttachCarts 补装配：
// 购物车服务需要 Bot 提供的网关与鉴权实现。
type Deps struct {
	Catalog    *service.CatalogService
	Drafts     *service.DraftService
	Storefront repository.StorefrontRepository
	Routes     repository.LogRouteRepository
}

// New 创建 Bot 并挂好事件处理器（尚未连接）
func New(token, guildID string, loc *time.Location, deps Deps, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAll
	session.StateEnabled = true

	b := &Bot{
		session:    session,
		log:        log.With().Str("component", "bot").Logger(),
		loc:        loc,
		guildID:    guildID,
		catalog:    deps.Catalog,
		drafts:     deps.Drafts,
		storefront: deps.Storefront,
		routes:     deps.Routes,
	}
	b.registerInteractionRoutes()

	// 平台事件 -> 处理器注册表
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onGuildMemberAdd)
	session.AddHandler(b.onGuildMemberRemove)
	session.AddHandler(b.onGuildBanAdd)
	session.AddHandler(b.onMessageDelete)
	session.AddHandler(b.onMessageUpdate)
	session.AddHandler(b.onVoiceStateUpdate)
	session.AddHandler(b.onMessageCreate)

	return b, nil
}

// AttachCarts 装配购物车服务，必须在 Open 之前调用
func (b *Bot) AttachCarts(carts *service.CartService) { b.carts = carts }

// Gateway 返回购物车频道网关实现
func (b *Bot) Gateway() service.ChannelGateway { return &channelGateway{session: b.session} }

// Authorizer 返回特权判定实现
func (b *Bot) Authorizer() service.Authorizer { return &guildAuthorizer{session: b.session} }

// Open 连接网关并注册命令
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

// Close 断开连接
func (b *Bot) Close() error {
	return b.session.Close()
}

// ==================== 上线 ====================

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Str("id", r.User.ID).
		Msg("机器人已上线")

	// 状态栏: "vendas | /ajudavirexstore"
	_ = s.UpdateWatchStatus(0, "vendas | /ajudavirexstore")
}

// ==================== 交互分发 ====================

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := b.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.dispatchByPrefix(b.componentHandlers, i.MessageComponentData().CustomID, s, i)
	case discordgo.InteractionModalSubmit:
		b.dispatchByPrefix(b.modalHandlers, i.ModalSubmitData().CustomID, s, i)
	}
}

// dispatchByPrefix customID 形如 "carrinho:pix" 或 "draft:add:<sessão>"，
// 取前两段作为路由键，余下的是参数
func (b *Bot) dispatchByPrefix(table map[string]interactionHandler, customID string, s *discordgo.Session, i *discordgo.InteractionCreate) {
	parts := strings.SplitN(customID, ":", 3)
	key := parts[0]
	if len(parts) > 1 {
		key = parts[0] + ":" + parts[1]
	}
	if handler, ok := table[key]; ok {
		handler(s, i)
		return
	}
	b.log.Warn().Str("custom_id", customID).Msg("无人认领的交互")
}

// customIDArg 取 customID 第三段参数（没有则返回空串）
func customIDArg(customID string) string {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func (b *Bot) registerInteractionRoutes() {
	b.commandHandlers = map[string]interactionHandler{
		"ajudavirexstore": b.cmdHelp,
		"setuplogs":       b.cmdSetupLogs,
		"botvoz":          b.cmdVoiceJoin,
		"banfake":         b.cmdFakeBan,
		"setup":           b.cmdSetup,
		"enviarproduto":   b.cmdPublishProduct,
		"enviardrop":      b.cmdPublishBundle,
	}
	b.componentHandlers = map[string]interactionHandler{
		"setup:categoria":     b.compCategoryPicker,
		"setup:categoriasel":  b.compCategorySelected,
		"setup:pix":           b.compPixModal,
		"setup:produto":       b.compProductModal,
		"setup:drop":          b.compDraftModal,
		"setup:enviarproduto": b.compProductPublishPicker,
		"setup:enviardrop":    b.compBundlePublishPicker,
		"setup:listar":        b.compListCatalog,
		"publicar:produto":    b.compProductSelected,
		"publicar:drop":       b.compBundleSelected,
		"comprar:produto":     b.compBuyProduct,
		"comprar:drop":        b.compBuyBundleOption,
		"draft:add":           b.compDraftAddOption,
		"draft:fim":           b.compDraftFinish,
		"draft:cancelar":      b.compDraftCancel,
		"carrinho:pix":        b.compCartPix,
		"carrinho:aprovar":    b.compCartApprove,
		"carrinho:fechar":     b.compCartClose,
	}
	b.modalHandlers = map[string]interactionHandler{
		"modal:pix":     b.modalPixSubmit,
		"modal:produto": b.modalProductSubmit,
		"modal:drop":    b.modalDraftSubmit,
		"modal:opcao":   b.modalOptionSubmit,
	}
}

// ==================== 通用回复 ====================

// respondEphemeral 仅触发者可见的文本回复（所有错误都走这里）
func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("回复交互失败")
	}
}

// respondEphemeralEmbed 仅触发者可见的 embed 回复
func (b *Bot) respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Error().Err(err).Msg("回复交互失败")
	}
}

func (b *Bot) now() time.Time { return time.Now().In(b.loc) }
