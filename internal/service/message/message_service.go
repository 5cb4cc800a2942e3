package messagesvc

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"pigeon/internal/apperr"
	"pigeon/internal/config"
	"pigeon/internal/metrics"
	"pigeon/internal/models"
	"pigeon/internal/repository"
)

// 投递事务在遇到可重试冲突时最多重试的次数
const maxTxRetries = 1

type Service struct {
	store  *repository.Store
	paging config.Chat
	log    *zap.Logger
}

func NewService(store *repository.Store, paging config.Chat, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, paging: paging, log: log}
}

// SendInput ToID 与 GroupID 必须且只能给出一个
type SendInput struct {
	ToID     *string                `json:"to_id"`
	GroupID  *string                `json:"group_id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
	Type     models.MessageType     `json:"type"`
}

type Sent struct {
	Message    *models.Message `json:"message"`
	Recipients int             `json:"recipients"`
}

// Send 写入消息并为每个接收者写入投递记录，两者在同一事务中完成
func (s *Service) Send(ctx context.Context, senderID string, in SendInput) (*Sent, error) {
	msg, err := s.validate(senderID, in)
	if err != nil {
		return nil, err
	}

	var out *Sent
	err = repository.RetryTransient(maxTxRetries, func() error {
		var txErr error
		out, txErr = s.sendOnce(ctx, msg)
		return txErr
	}, func(attempt int, err error) {
		s.log.Warn("retrying message fan-out after transient conflict", zap.Error(err), zap.Int("attempt", attempt))
	})
	if err != nil {
		return nil, err
	}

	target := "direct"
	if msg.GroupID != nil {
		target = "group"
	}
	metrics.MessageSent(target, out.Recipients)
	return out, nil
}

func (s *Service) sendOnce(ctx context.Context, tmpl models.Message) (*Sent, error) {
	var out *Sent
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		msg := tmpl
		recipients, err := recipientsFor(ctx, tx, &msg)
		if err != nil {
			return err
		}
		if err := tx.CreateMessage(ctx, &msg); err != nil {
			return err
		}
		n, err := tx.FanOut(ctx, msg.ID, recipients)
		if err != nil {
			return err
		}
		out = &Sent{Message: &msg, Recipients: n}
		return nil
	})
	return out, err
}

// recipientsFor 在事务内校验发送权限并读取当前接收者
func recipientsFor(ctx context.Context, tx *repository.Store, msg *models.Message) ([]string, error) {
	if msg.ToID != nil {
		to := *msg.ToID
		ok, err := tx.UserExists(ctx, to)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("user not found")
		}
		blocked, err := tx.IsBlockedEither(ctx, msg.FromID, to)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, apperr.Forbidden("messaging between these users is blocked")
		}
		return []string{to}, nil
	}

	g, err := tx.LockGroup(ctx, *msg.GroupID)
	if err != nil {
		return nil, err
	}
	if g.Disabled {
		return nil, apperr.Forbidden("group is disabled")
	}
	member, err := tx.GetMember(ctx, g.ID, msg.FromID)
	if apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, apperr.Forbidden("not a group member")
	}
	if err != nil {
		return nil, err
	}
	if g.OnlyAdminsCanPost && !member.IsAdmin {
		return nil, apperr.Forbidden("only group admins can post")
	}
	ids, err := tx.MemberIDs(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != msg.FromID {
			recipients = append(recipients, id)
		}
	}
	return recipients, nil
}

// validate 在访问存储之前完成全部输入校验
func (s *Service) validate(senderID string, in SendInput) (models.Message, error) {
	to, group := trimmed(in.ToID), trimmed(in.GroupID)
	if (to == nil) == (group == nil) {
		return models.Message{}, apperr.InvalidArg("exactly one of to_id or group_id is required")
	}
	if to != nil && *to == senderID {
		return models.Message{}, apperr.InvalidArg("cannot send a message to yourself")
	}

	typ := in.Type
	if typ == 0 {
		typ = models.MessageTypeText
	}
	content := strings.TrimSpace(in.Content)
	switch typ {
	case models.MessageTypeText:
		if content == "" {
			return models.Message{}, apperr.InvalidArg("content is required")
		}
	case models.MessageTypeImage, models.MessageTypeFile:
		if u, _ := in.Metadata["url"].(string); strings.TrimSpace(u) == "" {
			return models.Message{}, apperr.InvalidArg("metadata.url is required")
		}
	case models.MessageTypeSystem:
		return models.Message{}, apperr.InvalidArg("system messages cannot be sent by users")
	default:
		return models.Message{}, apperr.InvalidArg("unknown message type")
	}
	if utf8.RuneCountInString(content) > s.paging.ContentCharsOrDefault() {
		return models.Message{}, apperr.InvalidArg("content is too long")
	}

	msg := models.Message{
		FromID:  senderID,
		ToID:    to,
		GroupID: group,
		Content: content,
		Type:    typ,
	}
	if len(in.Metadata) > 0 {
		msg.Metadata = datatypes.JSONMap(in.Metadata)
	}
	return msg, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, messageID string) error {
	return s.store.MarkRead(ctx, userID, messageID)
}

func (s *Service) Inbox(ctx context.Context, userID string, page, limit int) (repository.List[models.UserMessage], error) {
	p := repository.NewPage(page, limit, s.paging.PageSizeOrDefault(), s.paging.MaxPageSizeOrDefault())
	return s.store.Inbox(ctx, userID, p)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
