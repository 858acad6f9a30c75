package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/dtos"
	"github.com/justsurfingit/job-portal/internal/services"
)

type UserHandler struct {
	Users  *services.UserService
	Cookie auth.CookieConfig
}

func NewUserHandler(users *services.UserService, cookie auth.CookieConfig) *UserHandler {
	return &UserHandler{Users: users, Cookie: cookie}
}

// Register is POST /api/user/register. Accepts JSON, or multipart with an
// optional profile photo in "file".
func (h *UserHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	photo, release, err := upload(c, "file")
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer release()

	account, err := h.Users.Register(c.Request.Context(), req, photo)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created successfully.", gin.H{"user": account})
}

// Login is POST /api/user/login. On success the session token is only
// sent as an HttpOnly cookie.
func (h *UserHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	account, session, err := h.Users.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.Cookie.SetSessionCookie(c.Writer, session, time.Now())
	respond(c, http.StatusOK, "Welcome back "+account.FullName, gin.H{"user": account})
}

func (h *UserHandler) Logout(c *gin.Context) {
	h.Cookie.ClearSessionCookie(c.Writer)
	respond(c, http.StatusOK, "Logged out successfully.", nil)
}

// UpdateProfile is POST /api/user/profile/update; an optional resume comes
// in the multipart "file" field.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dtos.ProfileUpdateRequest
	if err := bind(c, &req); err != nil {
		abortWithError(c, err)
		return
	}
	resume, release, err := upload(c, "file")
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer release()

	who := identity(c)
	account, err := h.Users.UpdateProfile(c.Request.Context(), who, who.AccountID, req, resume)
	if err != nil {
		abortWithError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated successfully.", gin.H{"user": account})
}
