package handler

import (
	"fmt"
	"net/http"
	"strings"

	"auction-service/services/auction/helpers"
	"auction-service/utils"

	"github.com/gin-gonic/gin"
)

type AuthServiceInterface interface {
	Register(name, email, password, phone string) error
	VerifyEmail(token string) error
	Login(email, password string) (string, error)
	Logout(email, token string) error
}

type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	if err := h.service.Register(req.Name, req.Email, req.Password, req.Phone); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("RegisterHandler: registration failed", map[string]any{"email": req.Email, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, nil, "user registered successfully, please verify your email")
	helpers.LogSuccess("RegisterHandler", "user registered successfully", map[string]any{"email": req.Email})
}

// VerifyEmailHandler handles GET /auth/verify?token=...
func (h *AuthHandler) VerifyEmailHandler(c *gin.Context) {
	token := c.Query("token")
	if err := h.service.VerifyEmail(token); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("VerifyEmailHandler: verification failed", map[string]any{"error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "email verified successfully")
	helpers.LogSuccess("VerifyEmailHandler", "email verified successfully", nil)
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LoginHandler: login failed", map[string]any{"email": req.Email, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.LoginResponse{Token: token}, "login successful")
	helpers.LogSuccess("LoginHandler", "login successful", map[string]any{"email": req.Email})
}

// LogoutHandler handles POST /auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req helpers.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LogoutHandler", err)
		return
	}

	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("authorization token is required"), "authorization token is required")
		return
	}

	if err := h.service.Logout(req.Email, token); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("LogoutHandler: logout failed", map[string]any{"email": req.Email, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "logout successful")
	helpers.LogSuccess("LogoutHandler", "logout successful", map[string]any{"email": req.Email})
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header
func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
