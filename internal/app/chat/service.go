package chat

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
)

const (
	// MaxContentLength is the largest accepted message, in characters.
	MaxContentLength = 5000

	// MaxChatNameLength matches the chats.name column.
	MaxChatNameLength = 63

	// DefaultPageSize is used when the history query carries no page_size.
	DefaultPageSize = 100

	// MaxPageSize bounds a single history page.
	MaxPageSize = 1000
)

// Store is the persistence the chat service depends on.
// Lookups return nil without error when the row does not exist.
type Store interface {
	CreateChat(ctx context.Context, name string, creatorID int64) (*Chat, error)
	AddUserToChat(ctx context.Context, chatID, userID int64) error
	GetChat(ctx context.Context, id int64) (*Chat, error)
	IsMember(ctx context.Context, userID, chatID int64) (bool, error)
	ListUserChats(ctx context.Context, userID int64) ([]Chat, error)
	ListChatUsers(ctx context.Context, chatID int64) ([]user.User, error)

	CreateMessage(ctx context.Context, chatID, userID int64, content string) (*Message, error)
	ListMessagesFrom(ctx context.Context, chatID, start int64, limit int) ([]Message, error)
	ListLatestMessages(ctx context.Context, chatID int64, limit int) ([]Message, error)
}

// Broadcaster fans a payload out to the live connections of a room.
type Broadcaster interface {
	Broadcast(roomID int64, payload []byte) int
}

// Service implements chat management and the message delivery pipeline.
type Service struct {
	store       Store
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService constructs a Service.
func NewService(store Store, broadcaster Broadcaster) *Service {
	return &Service{
		store:       store,
		broadcaster: broadcaster,
		logger:      logx.Component("ChatService"),
	}
}

// Authorize returns ErrChatNotFound unless userID is a member of chatID.
// A missing chat and a non-member caller are reported identically.
func (s *Service) Authorize(ctx context.Context, chatID, userID int64) error {
	ok, err := s.store.IsMember(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewError(errs.ErrChatNotFound)
	}
	return nil
}

// PostMessage stores content in chatID on behalf of userID and then pushes it to every
// live connection of the room. Nothing is pushed unless the write committed.
func (s *Service) PostMessage(ctx context.Context, chatID, userID int64, content string) (*Message, error) {
	if err := s.Authorize(ctx, chatID, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" || utf8.RuneCountInString(content) > MaxContentLength {
		return nil, errs.NewError(errs.ErrMessageContentInvalid, MaxContentLength)
	}

	msg, err := s.store.CreateMessage(ctx, chatID, userID, content)
	if err != nil {
		if !errs.HasCode(err, errs.ErrCrud) {
			err = errs.NewError(errs.ErrCrud, err)
		}
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Int64("message_id", msg.ID).Msg("Failed to serialize message for broadcast")
		return msg, nil
	}

	delivered := s.broadcaster.Broadcast(chatID, payload)
	s.logger.Debug().
		Int64("room_id", chatID).
		Int64("message_id", msg.ID).
		Int("delivered", delivered).
		Msg("Message broadcast.")

	return msg, nil
}

// GetMessages returns a page of history in ascending id order. With start set it returns
// up to pageSize messages with id >= *start; otherwise the newest pageSize messages.
func (s *Service) GetMessages(ctx context.Context, chatID, userID int64, pageSize int, start *int64) ([]Message, error) {
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	if err := s.Authorize(ctx, chatID, userID); err != nil {
		return nil, err
	}

	if start != nil {
		return s.store.ListMessagesFrom(ctx, chatID, *start, pageSize)
	}

	messages, err := s.store.ListLatestMessages(ctx, chatID, pageSize)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CreateChat creates a chat with creatorID as its first member.
func (s *Service) CreateChat(ctx context.Context, creatorID int64, name string) (*Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxChatNameLength {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	c, err := s.store.CreateChat(ctx, name, creatorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("room_id", c.ID).Int64("user_id", creatorID).Msg("Chat created.")
	return c, nil
}

// AddMember adds userID to chatID. The caller must already be a member.
func (s *Service) AddMember(ctx context.Context, chatID, callerID, userID int64) error {
	if err := s.Authorize(ctx, chatID, callerID); err != nil {
		return err
	}
	return s.store.AddUserToChat(ctx, chatID, userID)
}

// GetChat returns chatID if callerID is a member.
func (s *Service) GetChat(ctx context.Context, chatID, callerID int64) (*Chat, error) {
	if err := s.Authorize(ctx, chatID, callerID); err != nil {
		return nil, err
	}

	c, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.NewError(errs.ErrChatNotFound)
	}
	return c, nil
}

// ChatUsers lists the members of chatID if callerID is one of them.
func (s *Service) ChatUsers(ctx context.Context, chatID, callerID int64) ([]user.User, error) {
	if err := s.Authorize(ctx, chatID, callerID); err != nil {
		return nil, err
	}
	return s.store.ListChatUsers(ctx, chatID)
}

// UserChats lists the chats userID belongs to.
func (s *Service) UserChats(ctx context.Context, userID int64) ([]Chat, error) {
	return s.store.ListUserChats(ctx, userID)
}
