package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/authhub/internal/auth"
	"github.com/geocoder89/authhub/internal/config"
	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/geocoder89/authhub/internal/observability"
	"github.com/geocoder89/authhub/internal/session"
	"github.com/gin-gonic/gin"
)

// Both failures deliberately collapse into one message each; neither the
// duplicate-vs-store distinction nor the email-vs-password distinction is
// surfaced to the user.
const (
	registerFailedMsg = "Email already registered or fields empty."
	loginFailedMsg    = "Email or password is incorrect."
)

type UserLister interface {
	ListAll(ctx context.Context) ([]user.Listing, error)
}

type AuthHandler struct {
	authenticator *auth.Authenticator
	users         UserLister
	log           *slog.Logger
	prom          *observability.Prom
}

func NewAuthHandler(authenticator *auth.Authenticator, users UserLister, log *slog.Logger, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		users:         users,
		log:           log,
		prom:          prom,
	}
}

type credentialsForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Index greets the logged-in user. RequireLogin has already bounced anonymous clients.
func (h *AuthHandler) Index(ctx *gin.Context) {
	id, _ := session.UserIDFromContext(ctx)

	ctx.HTML(http.StatusOK, "index.html", gin.H{"UserID": id})
}

func (h *AuthHandler) ShowRegister(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var form credentialsForm

	if err := BindForm(ctx, &form); err != nil {
		h.log.Debug("register form rejected", "fields", ParseBindError(err, &form))
		h.countRegister("rejected")

		ctx.HTML(http.StatusBadRequest, "register.html", gin.H{"Error": registerFailedMsg})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	_, err := h.authenticator.Register(cctx, form.Email, form.Password)

	if err != nil {
		if errors.Is(err, auth.ErrEmptyCredentials) || errors.Is(err, user.ErrEmailTaken) {
			h.countRegister("rejected")
		} else {
			// store failure; logged here, shown to the user as the same generic message
			h.log.Error("register failed", "err", err)
			h.countRegister("error")
		}

		ctx.HTML(http.StatusOK, "register.html", gin.H{"Error": registerFailedMsg})
		return
	}

	h.countRegister("ok")

	ctx.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) ShowLogin(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var form credentialsForm

	if err := BindForm(ctx, &form); err != nil {
		h.log.Debug("login form rejected", "fields", ParseBindError(err, &form))
		h.countLogin("rejected")

		ctx.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": loginFailedMsg})
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	userID, err := h.authenticator.Authenticate(cctx, form.Email, form.Password)

	if err != nil {
		if errors.Is(err, auth.ErrEmptyCredentials) || errors.Is(err, auth.ErrInvalidCredentials) {
			h.countLogin("rejected")
		} else {
			h.log.Error("login failed", "err", err)
			h.countLogin("error")
		}

		ctx.HTML(http.StatusOK, "login.html", gin.H{"Error": loginFailedMsg})
		return
	}

	if err := session.Establish(ctx, userID); err != nil {
		h.log.Error("session save failed", "err", err)
		h.countLogin("error")

		ctx.HTML(http.StatusOK, "login.html", gin.H{"Error": loginFailedMsg})
		return
	}

	h.countLogin("ok")

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	if err := session.Clear(ctx); err != nil {
		h.log.Error("session clear failed", "err", err)
	}

	ctx.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	users, err := h.users.ListAll(cctx)

	if err != nil {
		h.log.Error("list users failed", "err", err)

		ctx.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}

	ctx.HTML(http.StatusOK, "users.html", gin.H{"Users": users})
}

func (h *AuthHandler) countRegister(result string) {
	if h.prom != nil {
		h.prom.RegisterResults.WithLabelValues(result).Inc()
	}
}

func (h *AuthHandler) countLogin(result string) {
	if h.prom != nil {
		h.prom.LoginResults.WithLabelValues(result).Inc()
	}
}
