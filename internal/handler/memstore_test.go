package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"roomchat/internal/app/chat"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

// memStore is an in-memory stand-in for the postgres store.
type memStore struct {
	mu        sync.Mutex
	users     map[int64]*user.User
	chats     map[int64]*chat.Chat
	members   map[int64]map[int64]bool
	messages  []chat.Message
	nextUser  int64
	nextChat  int64
	nextMsgID int64
	failWrite bool
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]*user.User{},
		chats:   map[int64]*chat.Chat{},
		members: map[int64]map[int64]bool{},
	}
}

func (m *memStore) CreateUser(_ context.Context, username, passHash string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
	}
	m.nextUser++
	u := &user.User{ID: m.nextUser, Username: username, PassHash: passHash, DateCreated: time.Now().UTC()}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByName(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUser(_ context.Context, id int64, params user.UpdateParams) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if params.Username != nil {
		for _, other := range m.users {
			if other.ID != id && other.Username == *params.Username {
				return nil, errs.NewError(errs.ErrUserAlreadyExists)
			}
		}
		u.Username = *params.Username
	}
	if params.FirstName != nil {
		u.FirstName = params.FirstName
	}
	if params.LastName != nil {
		u.LastName = params.LastName
	}
	cp := *u
	return &cp, nil
}

// seedChat inserts a chat with a fixed id.
func (m *memStore) seedChat(id int64, name string, memberIDs ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[id] = &chat.Chat{ID: id, Name: name}
	m.members[id] = map[int64]bool{}
	for _, uid := range memberIDs {
		m.members[id][uid] = true
	}
	if id > m.nextChat {
		m.nextChat = id
	}
}

func (m *memStore) CreateChat(_ context.Context, name string, creatorID int64) (*chat.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextChat++
	c := &chat.Chat{ID: m.nextChat, Name: name}
	m.chats[c.ID] = c
	m.members[c.ID] = map[int64]bool{creatorID: true}
	cp := *c
	return &cp, nil
}

func (m *memStore) AddUserToChat(_ context.Context, chatID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return errs.NewError(errs.ErrUserNotFound)
	}
	m.members[chatID][userID] = true
	return nil
}

func (m *memStore) GetChat(_ context.Context, id int64) (*chat.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) IsMember(_ context.Context, userID, chatID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[chatID][userID], nil
}

func (m *memStore) ListUserChats(_ context.Context, userID int64) ([]chat.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []chat.Chat
	for id, set := range m.members {
		if set[userID] {
			out = append(out, *m.chats[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListChatUsers(_ context.Context, chatID int64) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for uid := range m.members[chatID] {
		out = append(out, *m.users[uid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateMessage(_ context.Context, chatID, userID int64, content string) (*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return nil, errs.NewError(errs.ErrCrud)
	}
	m.nextMsgID++
	msg := chat.Message{ID: m.nextMsgID, RoomID: chatID, UserID: userID, Content: content, SentAt: time.Now()}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memStore) ListMessagesFrom(_ context.Context, chatID, start int64, limit int) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []chat.Message
	for _, msg := range m.messages {
		if msg.RoomID == chatID && msg.ID >= start && len(out) < limit {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) ListLatestMessages(_ context.Context, chatID int64, limit int) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []chat.Message
	for i := len(m.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if m.messages[i].RoomID == chatID {
			out = append(out, m.messages[i])
		}
	}
	return out, nil
}
