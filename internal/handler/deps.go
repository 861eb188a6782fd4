package handler

import (
	"context"

	"roomchat/internal/app/auth"
	"roomchat/internal/app/chat"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
)

// UserStore is the profile persistence used by the user handlers.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
	UpdateUser(ctx context.Context, id int64, params user.UpdateParams) (*user.User, error)
}

// AppDeps bundles everything the handlers need. It is built once in main.
type AppDeps struct {
	Config   *configs.AppConfig
	Auth     *auth.Service
	Chats    *chat.Service
	Users    UserStore
	Registry *chat.Registry
}
