package auth

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/models"
	"github.com/attachpro/backend/pkg/mailer"
	"github.com/attachpro/backend/pkg/queue"
	"github.com/attachpro/backend/pkg/response"
	"github.com/attachpro/backend/pkg/utils"
)

// MaxFailedLogins is the failure count at which an account is locked.
const MaxFailedLogins = 5

// ResetTokenTTL is the validity window of a password reset token.
const ResetTokenTTL = time.Hour

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest is the body for POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest is the body for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePasswordRequest is the body for POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo     *Repository
	jwt      *JWTService
	mailer   mailer.Mailer
	queue    *queue.Queue
	recorder *audit.Recorder
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, m mailer.Mailer, q *queue.Queue, recorder *audit.Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, mailer: m, queue: q, recorder: recorder, logger: logger}
}

// Login handles POST /auth/login. Repeated failures lock the account; a
// locked account is rejected as locked even with the correct password.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if user.Status == models.UserLocked {
		response.Forbidden(c, "account locked")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		count, ferr := h.repo.RecordLoginFailure(c.Request.Context(), user.ID)
		if ferr != nil {
			h.logger.Error("record login failure", zap.Error(ferr))
		}
		if ferr == nil && count >= MaxFailedLogins {
			h.lockAccount(c, user)
			response.Forbidden(c, "account locked")
			return
		}
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if err := h.repo.RecordLoginSuccess(c.Request.Context(), user.ID); err != nil {
		h.logger.Error("record login success", zap.Error(err))
	}

	token, err := h.jwt.Generate(user)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID: &user.ID,
		Action:  models.ActionLogin,
	}))
	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

func (h *Handler) lockAccount(c *gin.Context, user *models.User) {
	ctx := c.Request.Context()
	if err := h.repo.SetStatus(ctx, user.ID, models.UserLocked); err != nil {
		h.logger.Error("lock account", zap.Error(err), zap.String("user_id", user.ID.String()))
		return
	}
	h.recorder.Record(ctx, audit.FromRequest(c, audit.Entry{
		ActorID:    &user.ID,
		Action:     models.ActionAccountLocked,
		EntityType: "user",
		EntityID:   user.ID.String(),
		Metadata:   map[string]any{"failed_logins": MaxFailedLogins},
	}))
	// Lock notice delivery is best-effort; the lock itself already happened.
	if err := h.queue.EnqueueEmail(ctx, queue.EmailPayload{
		Kind:           queue.EmailKindAccountLocked,
		RecipientEmail: user.Email,
		RecipientName:  user.FullName,
	}); err != nil {
		h.logger.Warn("enqueue lock notice", zap.Error(err))
	}
}

// ForgotPassword handles POST /auth/forgot-password. The reset email is sent
// synchronously: if it cannot be delivered the flow has failed.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Do not reveal whether the address exists.
		response.OK(c, gin.H{"message": "if the email is registered, a reset link has been sent"})
		return
	}

	token, err := utils.RandomToken()
	if err != nil {
		response.Internal(c, "failed to create reset token")
		return
	}
	if err := h.repo.SetResetToken(c.Request.Context(), user.ID, token, time.Now().Add(ResetTokenTTL)); err != nil {
		response.Internal(c, "failed to create reset token")
		return
	}

	body := fmt.Sprintf("Hello %s,\n\nUse this token to reset your password within the next hour:\n\n%s\n", user.FullName, token)
	if err := h.mailer.Send(c.Request.Context(), user.Email, "Password reset", body); err != nil {
		h.logger.Error("send reset email", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Internal(c, "failed to send reset email")
		return
	}

	response.OK(c, gin.H{"message": "if the email is registered, a reset link has been sent"})
}

// ResetPassword handles POST /auth/reset-password. Consuming a valid token
// also unlocks the account and clears the failure counter.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByResetToken(c.Request.Context(), req.Token)
	if err != nil {
		response.BadRequest(c, "invalid or expired reset token")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.ResetPassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Internal(c, "failed to reset password")
		return
	}

	h.recorder.Record(c.Request.Context(), audit.FromRequest(c, audit.Entry{
		ActorID: &user.ID,
		Action:  models.ActionPasswordReset,
	}))
	response.OK(c, gin.H{"message": "password updated"})
}

// ChangePassword handles POST /auth/change-password for an authenticated user.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	userID := c.MustGet(models.ContextUserID).(uuid.UUID)
	user, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Unauthorized(c, "invalid session")
		return
	}
	if !utils.CheckPassword(req.CurrentPassword, user.Password) {
		response.Unauthorized(c, "current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.repo.UpdatePassword(c.Request.Context(), user.ID, hash); err != nil {
		response.Internal(c, "failed to update password")
		return
	}
	response.OK(c, gin.H{"message": "password updated"})
}
