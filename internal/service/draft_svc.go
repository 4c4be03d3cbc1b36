package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 草稿会话 ====================

// PanelMeta 开草稿时的面板元数据
type PanelMeta struct {
	Titulo    string
	Descricao string
	Emoji     string
	ImagemURL string
}

// OptionMeta 追加选项的入参
type OptionMeta struct {
	Nome      string
	Descricao string
	Preco     string
	Emoji     string
}

// DraftSession 进行中的面板草稿，只存在于进程内存，重启即失
type DraftSession struct {
	ID        string
	StaffID   string
	Bundle    model.Bundle
	UpdatedAt time.Time
}

// ==================== 服务 ====================

// DraftService 面板草稿工作流
//
// 会话以生成的 uuid 为键，而不是直接用操作者 ID：同一操作者第二次
// 开草稿会收到冲突错误，不会悄悄丢弃旧草稿。没有终结动作的草稿由
// 定时清理任务按 TTL 回收。
type DraftService struct {
	catalog *CatalogService
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*DraftSession // session id -> 草稿
	byStaff  map[string]string        // staff id -> session id（一人一稿）
}

// NewDraftService 创建草稿服务；ttl <= 0 表示不过期
func NewDraftService(catalog *CatalogService, ttl time.Duration, log zerolog.Logger) *DraftService {
	return &DraftService{
		catalog:  catalog,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With().Str("component", "draft").Logger(),
		sessions: make(map[string]*DraftSession),
		byStaff:  make(map[string]string),
	}
}

// Open 为操作者开一份空选项草稿，返回会话 ID
// 已有进行中的草稿时报冲突，由操作者先完成或放弃旧草稿。
func (s *DraftService) Open(staffID string, meta PanelMeta) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byStaff[staffID]; ok {
		if _, alive := s.sessions[existing]; alive {
			return "", fmt.Errorf("%w: sessão %s", ErrDraftConflict, existing)
		}
		delete(s.byStaff, staffID)
	}

	emoji := meta.Emoji
	if emoji == "" {
		emoji = model.DefaultPanelEmoji
	}

	session := &DraftSession{
		ID:      uuid.NewString(),
		StaffID: staffID,
		Bundle: model.Bundle{
			TituloPainel:    meta.Titulo,
			DescricaoPainel: meta.Descricao,
			EmojiPainel:     emoji,
			ImagemURL:       meta.ImagemURL,
			TipoImagem:      model.DefaultImageType,
			Opcoes:          []model.BundleOption{},
		},
		UpdatedAt: s.now(),
	}
	s.sessions[session.ID] = session
	s.byStaff[staffID] = session.ID

	s.log.Info().Str("session", session.ID).Str("staff", staffID).Msg("草稿已打开")
	return session.ID, nil
}

// AddOption 向草稿追加一个选项；会话不存在（如进程重启过）报 NotFound
func (s *DraftService) AddOption(sessionID string, opt OptionMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: rascunho %s", ErrNotFound, sessionID)
	}

	descricao := opt.Descricao
	if descricao == "" {
		descricao = "Valor: " + opt.Preco
	}
	emoji := opt.Emoji
	if emoji == "" {
		emoji = model.DefaultOptionEmoji
	}

	session.Bundle.Opcoes = append(session.Bundle.Opcoes, model.BundleOption{
		Nome:      opt.Nome,
		Descricao: descricao,
		Preco:     opt.Preco,
		Emoji:     emoji,
	})
	session.UpdatedAt = s.now()
	return nil
}

// Get 会话快照
func (s *DraftService) Get(sessionID string) (*DraftSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: rascunho %s", ErrNotFound, sessionID)
	}
	snapshot := *session
	snapshot.Bundle.Opcoes = append([]model.BundleOption(nil), session.Bundle.Opcoes...)
	return &snapshot, nil
}

// Commit 提交草稿入目录。零选项报 EmptyCollection 并保留草稿待补；
// 成功后草稿销毁。
func (s *DraftService) Commit(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: rascunho %s", ErrNotFound, sessionID)
	}
	bundle := session.Bundle
	bundle.Opcoes = append([]model.BundleOption(nil), session.Bundle.Opcoes...)
	s.mu.Unlock()

	bundleID, err := s.catalog.CreateBundle(ctx, &bundle)
	if err != nil {
		// 失败保留草稿，操作者可以补选项后重试
		return "", err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	if s.byStaff[session.StaffID] == sessionID {
		delete(s.byStaff, session.StaffID)
	}
	s.mu.Unlock()

	s.log.Info().Str("session", sessionID).Str("bundle", bundleID).Msg("草稿已提交")
	return bundleID, nil
}

// Discard 主动放弃草稿（会话不存在时静默，放弃本就是尽力而为）
func (s *DraftService) Discard(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	delete(s.sessions, sessionID)
	if s.byStaff[session.StaffID] == sessionID {
		delete(s.byStaff, session.StaffID)
	}
}

// SweepExpired 回收闲置超过 TTL 的草稿，返回回收数量；定时任务调用
func (s *DraftService) SweepExpired() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			if s.byStaff[session.StaffID] == id {
				delete(s.byStaff, session.StaffID)
			}
			removed++
		}
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("过期草稿已回收")
	}
	return removed
}

// ActiveSessions 进行中的草稿数（运维接口展示用）
func (s *DraftService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
