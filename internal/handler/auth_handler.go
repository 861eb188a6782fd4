package handler

import (
	"net/http"
	"time"

	"roomchat/internal/app/auth"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "Authorization"

// CredentialsInput is the sign-in and sign-up request body.
type CredentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by every flow that issues tokens.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Type        string `json:"type"`
}

func setRefreshCookie(w http.ResponseWriter, deps *AppDeps, pair *auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(deps.Config.Auth.RefreshTTL() / time.Second),
		HttpOnly: true,
		Secure:   !deps.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, deps *AppDeps) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !deps.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

func respondTokens(w http.ResponseWriter, r *http.Request, deps *AppDeps, status int, pair *auth.TokenPair) {
	setRefreshCookie(w, deps, pair)
	resp.RespondWithStatus(w, r, status, TokenResponse{AccessToken: pair.AccessToken, Type: "Bearer"})
}

// HandleSignIn verifies credentials and issues a token pair.
func HandleSignIn(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		pair, err := deps.Auth.SignIn(r.Context(), input.Username, input.Password)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondTokens(w, r, deps, http.StatusOK, pair)
	}
}

// HandleSignUp creates an account and issues a token pair.
func HandleSignUp(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CredentialsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		pair, err := deps.Auth.SignUp(r.Context(), input.Username, input.Password)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondTokens(w, r, deps, http.StatusCreated, pair)
	}
}

// HandleRefresh exchanges the refresh cookie for a new token pair.
func HandleRefresh(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil || cookie.Value == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		pair, err := deps.Auth.Refresh(r.Context(), cookie.Value)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondTokens(w, r, deps, http.StatusOK, pair)
	}
}

// HandleLogout revokes the bearer token and clears the refresh cookie.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Auth.Logout(r.Context(), IdentityFrom(r.Context())); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		clearRefreshCookie(w, deps)
		resp.RespondNoContent(w)
	}
}
