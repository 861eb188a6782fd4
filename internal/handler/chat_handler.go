package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

// CreateChatInput is the chat creation request body.
type CreateChatInput struct {
	Name string `json:"name"`
}

// AddUserInput names the user to add to a chat.
type AddUserInput struct {
	UserID int64 `json:"user_id"`
}

// PostMessageInput is the message creation request body.
type PostMessageInput struct {
	Content string `json:"content"`
}

func chatIDParam(r *http.Request) (int64, error) {
	id, customErr := req.PathInt64(chi.URLParam(r, "chat_id"))
	if customErr != nil {
		return 0, customErr
	}
	return id, nil
}

// HandleCreateChat creates a chat owned by the caller.
func HandleCreateChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		c, err := deps.Chats.CreateChat(r.Context(), IdentityFrom(r.Context()).User.ID, input.Name)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, c)
	}
}

// HandleAddUser adds a user to a chat the caller belongs to.
func HandleAddUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := chatIDParam(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		var input AddUserInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.UserID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := deps.Chats.AddMember(r.Context(), chatID, IdentityFrom(r.Context()).User.ID, input.UserID); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondNoContent(w)
	}
}

// HandleGetChat returns a chat the caller belongs to.
func HandleGetChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := chatIDParam(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		c, err := deps.Chats.GetChat(r.Context(), chatID, IdentityFrom(r.Context()).User.ID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, c)
	}
}

// HandleChatUsers lists the members of a chat the caller belongs to.
func HandleChatUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := chatIDParam(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		users, err := deps.Chats.ChatUsers(r.Context(), chatID, IdentityFrom(r.Context()).User.ID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nonNil(users))
	}
}

// HandleMyChats lists the caller's chats.
func HandleMyChats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := deps.Chats.UserChats(r.Context(), IdentityFrom(r.Context()).User.ID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nonNil(chats))
	}
}

// HandlePostMessage stores a message and pushes it to the room's live connections.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := chatIDParam(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		var input PostMessageInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Chats.PostMessage(r.Context(), chatID, IdentityFrom(r.Context()).User.ID, input.Content)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondCreated(w, r, msg)
	}
}

// HandleGetMessages returns a page of history. Without start it returns the newest
// page_size messages; with start, up to page_size messages from start onwards.
func HandleGetMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := chatIDParam(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		pageSize, customErr := req.QueryInt(r, "page_size", chat.DefaultPageSize)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		start, customErr := req.QueryOptionalInt64(r, "start")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		messages, err := deps.Chats.GetMessages(r.Context(), chatID, IdentityFrom(r.Context()).User.ID, pageSize, start)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, nonNil(messages))
	}
}

// nonNil keeps empty lists serialised as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
