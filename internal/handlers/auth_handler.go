package handlers

import (
	"log"

	"carrent/internal/middleware"
	"carrent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Get("/whoami", middleware.Authorize(h.authService, ""), h.HandleWhoAmI)
}

// LoginRequest represents the request body for login.
// Email is not format-checked: any unknown address is reported as not registered.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Email, err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{AccessToken: token})
}

// HandleRegister handles new customer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.authService.RegisterUser(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Email, err)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(TokenResponse{AccessToken: token})
}

// HandleWhoAmI returns the stored user behind the token, with its role.
func (h *AuthHandler) HandleWhoAmI(c *fiber.Ctx) error {
	claims := middleware.CurrentClaims(c)

	user, err := h.authService.CurrentUser(c.UserContext(), claims.ID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
