package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"carrent/internal/apperror"
	"carrent/internal/models"
	"carrent/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for every stored password.
const PasswordCost = 10

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// RoleClaim is the role snapshot embedded in a token.
type RoleClaim struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Claims is the payload of an access token.
type Claims struct {
	ID    uint      `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image"`
	Role  RoleClaim `json:"role"`
	jwt.StandardClaims
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	roleRepo  repositories.RoleRepository
	jwtSecret []byte
	tokenTTL  time.Duration // zero means no exp claim
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	RoleName string // defaults to CUSTOMER
}

// RegisterUser creates a user with a hashed password and returns an access
// token for it.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.ToLower(in.Email)

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return "", apperror.NewEmailAlreadyTaken(in.Email)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return "", fmt.Errorf("failed to check email %s: %w", email, err)
	}

	roleName := in.RoleName
	if roleName == "" {
		roleName = models.RoleCustomer
	}
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperror.NewRecordNotFound("Role")
		}
		return "", fmt.Errorf("failed to resolve role %s: %w", roleName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.NewValidation(map[string]string{
				"password": "password must not be longer than 72 bytes",
			})
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:              in.Name,
		Email:             email,
		EncryptedPassword: string(hashedPassword),
		RoleID:            role.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}
	user.Role = role

	return s.GenerateToken(user)
}

// LoginUser checks the password of the user registered under email and
// returns an access token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperror.NewEmailNotRegistered(email)
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte(password)); err != nil {
		return "", apperror.NewWrongPassword()
	}

	if user.Role == nil {
		role, err := s.roleRepo.FindByID(ctx, user.RoleID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return "", apperror.NewRecordNotFound("Role")
			}
			return "", fmt.Errorf("failed to load role of user %d: %w", user.ID, err)
		}
		user.Role = role
	}

	return s.GenerateToken(user)
}

// GenerateToken signs an HS256 token for the user. user.Role must be set.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	if user.Role == nil {
		return "", fmt.Errorf("user %d has no role loaded", user.ID)
	}

	now := s.now()
	claims := Claims{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role:  RoleClaim{ID: user.Role.ID, Name: user.Role.Name},
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
		},
	}
	if s.tokenTTL > 0 {
		claims.ExpiresAt = now.Add(s.tokenTTL).Unix()
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies a token. Failures are *apperror.Error
// values carrying the verification message ("jwt must be provided",
// "jwt malformed", "invalid token", "invalid signature", ...).
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperror.NewJSONWebToken("jwt must be provided")
	}
	if strings.Count(tokenString, ".") != 2 {
		return nil, apperror.NewJSONWebToken("jwt malformed")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnexpectedSigningMethod, token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, tokenError(err, claims)
	}
	if !token.Valid {
		return nil, apperror.NewJSONWebToken("invalid token")
	}
	return claims, nil
}

func tokenError(err error, claims *Claims) *apperror.Error {
	var ve *jwt.ValidationError
	if !errors.As(err, &ve) {
		return apperror.NewJSONWebToken("invalid token")
	}
	switch {
	case ve.Errors&jwt.ValidationErrorMalformed != 0:
		return apperror.NewJSONWebToken("invalid token")
	case ve.Errors&jwt.ValidationErrorUnverifiable != 0:
		return apperror.NewJSONWebToken("invalid algorithm")
	case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
		return apperror.NewJSONWebToken("invalid signature")
	case ve.Errors&jwt.ValidationErrorExpired != 0:
		return apperror.NewTokenExpired(time.Unix(claims.ExpiresAt, 0).UTC())
	}
	return apperror.NewJSONWebToken("invalid token")
}

// CurrentUser loads the user behind a verified token, then its role. The
// token's own snapshot of name and role is ignored.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewRecordNotFound("User")
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	role, err := s.roleRepo.FindByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewRecordNotFound("Role")
		}
		return nil, fmt.Errorf("failed to load role %d: %w", user.RoleID, err)
	}
	user.Role = role
	return user, nil
}
