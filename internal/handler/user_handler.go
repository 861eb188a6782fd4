package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"roomchat/internal/app/auth"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/req"
	"roomchat/internal/pkg/resp"
)

const maxNameLength = 40

// HandleMe returns the caller's profile.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, IdentityFrom(r.Context()).User)
	}
}

// HandleGetUser returns a user by id.
func HandleGetUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := req.PathInt64(chi.URLParam(r, "user_id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Users.GetUserByID(r.Context(), userID)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if u == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		resp.RespondSuccess(w, r, u)
	}
}

// HandleUpdateUser applies a partial profile update for the caller.
// Changing the username invalidates every token issued under the old name.
func HandleUpdateUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input user.UpdateParams
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username != nil {
			if err := auth.ValidateUsername(*input.Username); err != nil {
				resp.RespondError(w, r, err)
				return
			}
		}
		for _, name := range []*string{input.FirstName, input.LastName} {
			if name != nil && len([]rune(*name)) > maxNameLength {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
		}

		updated, err := deps.Users.UpdateUser(r.Context(), IdentityFrom(r.Context()).User.ID, input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, updated)
	}
}
