/*
Package handler provides the HTTP handlers and routing setup for the chat server.

This file defines the main Router, applying middleware for logging, CORS and per-IP rate
limiting before delegating requests to the REST and WebSocket handlers.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"roomchat/internal/pkg/limiter"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

const (
	AuthRate  = 0.2
	AuthBurst = 10
	WSRate    = 0.5
	WSBurst   = 10
)

// newUpgrader accepts any origin in development and only the configured ones otherwise.
func newUpgrader(deps *AppDeps) *websocket.Upgrader {
	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}
}

// Router sets up the HTTP routing table. Limiter sweeps stop when ctx is cancelled.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.New(rate.Limit(AuthRate), AuthBurst)
	wsLimiter := limiter.New(rate.Limit(WSRate), WSBurst)
	go authLimiter.Run(ctx)
	go wsLimiter.Run(ctx)

	upgrader := newUpgrader(deps)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]string{"status": "ok"})
	})

	requireAuth := RequireAuth(deps.Auth)

	api := func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.With(authLimiter.Middleware).Post("/signin", HandleSignIn(deps))
			a.With(authLimiter.Middleware).Post("/signup", HandleSignUp(deps))
			a.Post("/refresh", HandleRefresh(deps))
			a.With(requireAuth).Post("/logout", HandleLogout(deps))
		})

		api.Route("/user", func(u chi.Router) {
			u.Use(requireAuth)
			u.Get("/me", HandleMe(deps))
			u.Get("/{user_id}", HandleGetUser(deps))
			u.Patch("/", HandleUpdateUser(deps))
		})

		api.Route("/chat", func(ch chi.Router) {
			ch.Use(requireAuth)
			ch.Post("/", HandleCreateChat(deps))
			ch.Get("/my_chats", HandleMyChats(deps))
			ch.Get("/{chat_id}", HandleGetChat(deps))
			ch.Get("/{chat_id}/users", HandleChatUsers(deps))
			ch.Post("/{chat_id}/user", HandleAddUser(deps))
			ch.Post("/{chat_id}/message", HandlePostMessage(deps))
			ch.Get("/{chat_id}/messages", HandleGetMessages(deps))
		})

		api.With(wsLimiter.Middleware).Get("/ws/chat/{chat_id}/messages", HandleMessagesWebSocket(deps, upgrader))
	}

	if base := deps.Config.Service.BasePath; base != "" {
		r.Route(base, api)
	} else {
		r.Group(api)
	}

	return r
}
