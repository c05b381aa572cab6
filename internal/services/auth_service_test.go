package services_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"carrent/internal/apperror"
	"carrent/internal/models"
	"carrent/internal/repositories"
	"carrent/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func assertKind(t *testing.T, err error, kind apperror.Kind) *apperror.Error {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.Error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	os.Exit(m.Run())
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	roles := repositories.NewMockRoleRepository(models.RoleCustomer, models.RoleAdmin)
	authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)

	input := services.RegisterInput{Name: "Fatur", Email: "Fatur@Gmail.com", Password: "123456"}

	// Successful registration
	mockRepo.On("FindByEmail", ctx, "fatur@gmail.com").Return(nil, notFound("user")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		user := args.Get(1).(*models.User)
		assert.Equal(t, "fatur@gmail.com", user.Email)
		assert.Equal(t, uint(1), user.RoleID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte("123456")))
		cost, err := bcrypt.Cost([]byte(user.EncryptedPassword))
		assert.NoError(t, err)
		assert.Equal(t, services.PasswordCost, cost)
		user.ID = 7
	}).Return(nil).Once()

	token, err := authService.RegisterUser(ctx, input)
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.ID)
	assert.Equal(t, "fatur@gmail.com", claims.Email)
	assert.Equal(t, models.RoleCustomer, claims.Role.Name)
	assert.Zero(t, claims.ExpiresAt)
	mockRepo.AssertExpectations(t)

	// Second registration with the same email
	mockRepo.On("FindByEmail", ctx, "fatur@gmail.com").Return(&models.User{ID: 7, Email: "fatur@gmail.com"}, nil).Once()
	_, err = authService.RegisterUser(ctx, input)
	assertKind(t, err, apperror.KindEmailAlreadyTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_UnknownRole(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, repositories.NewMockRoleRepository(), testJWTSecret, 0)

	mockRepo.On("FindByEmail", ctx, "a@b.c").Return(nil, notFound("user")).Once()
	_, err := authService.RegisterUser(ctx, services.RegisterInput{Name: "A", Email: "a@b.c", Password: "123456"})
	appErr := assertKind(t, err, apperror.KindRecordNotFound)
	assert.Equal(t, "Role not found!", appErr.Message)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	roles := repositories.NewMockRoleRepository(models.RoleCustomer, models.RoleAdmin)
	authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user := &models.User{
		ID:                1,
		Name:              "Malay",
		Email:             "malay@gmail.com",
		EncryptedPassword: string(hashedPassword),
		RoleID:            2,
		Role:              &models.Role{ID: 2, Name: models.RoleAdmin},
	}

	// Successful login, email is looked up lower-cased
	mockRepo.On("FindByEmail", ctx, "malay@gmail.com").Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "Malay@gmail.com", "password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(1), claims["id"])
	assert.Equal(t, "Malay", claims["name"])
	assert.Contains(t, claims, "iat")
	assert.Equal(t, map[string]interface{}{"id": float64(2), "name": "ADMIN"}, claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("FindByEmail", ctx, "malay@gmail.com").Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "malay@gmail.com", "wrongpassword")
	assertKind(t, err, apperror.KindWrongPassword)
	mockRepo.AssertExpectations(t)

	// Unknown email
	mockRepo.On("FindByEmail", ctx, "blabla@gmail.com").Return(nil, notFound("user")).Once()
	_, err = authService.LoginUser(ctx, "blabla@gmail.com", "password")
	appErr := assertKind(t, err, apperror.KindEmailNotRegistered)
	assert.Equal(t, 404, appErr.Status())
	mockRepo.AssertExpectations(t)

	// Store failure is not a domain error
	mockRepo.On("FindByEmail", ctx, "broken@gmail.com").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.LoginUser(ctx, "broken@gmail.com", "password")
	assert.Error(t, err)
	_, isAppErr := apperror.As(err)
	assert.False(t, isAppErr)
}

func TestAuthService_LoginUser_LoadsRoleWhenMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	roles := repositories.NewMockRoleRepository(models.RoleCustomer)
	authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	mockRepo.On("FindByEmail", ctx, "budi@gmail.com").Return(&models.User{
		ID: 3, Email: "budi@gmail.com", EncryptedPassword: string(hashedPassword), RoleID: 1,
	}, nil).Once()

	token, err := authService.LoginUser(ctx, "budi@gmail.com", "password")
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, claims.Role.Name)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), repositories.NewMockRoleRepository(), testJWTSecret, 0)

	signed := func(secret string, claims services.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	base := services.Claims{ID: 1, Name: "Johnny", Email: "johnny@binar.co.id", Role: services.RoleClaim{ID: 1, Name: "CUSTOMER"}}

	claims, err := authService.ValidateToken(signed(testJWTSecret, base))
	require.NoError(t, err)
	assert.Equal(t, "Johnny", claims.Name)
	assert.Nil(t, claims.Image)

	tests := []struct {
		name     string
		token    string
		kind     apperror.Kind
		errName  string
		expected string
	}{
		{"empty", "", apperror.KindJSONWebToken, "JsonWebTokenError", "jwt must be provided"},
		{"one segment", "invalidToken", apperror.KindJSONWebToken, "JsonWebTokenError", "jwt malformed"},
		{"undecodable header", "yJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJpZCI6MX0.A1QUdj7kUy6Rfarn4jpy3z0SU6PVS-vJM51rO0I_hIc", apperror.KindJSONWebToken, "JsonWebTokenError", "invalid token"},
		{"other secret", signed("another_secret", base), apperror.KindJSONWebToken, "JsonWebTokenError", "invalid signature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.ValidateToken(tt.token)
			appErr := assertKind(t, err, tt.kind)
			assert.Equal(t, tt.errName, appErr.Name)
			assert.Equal(t, tt.expected, appErr.Message)
			assert.Nil(t, appErr.Details)
			assert.Equal(t, 401, appErr.Status())
		})
	}

	t.Run("expired", func(t *testing.T) {
		expired := base
		expired.ExpiresAt = time.Now().Add(-time.Hour).Unix()
		_, err := authService.ValidateToken(signed(testJWTSecret, expired))
		appErr := assertKind(t, err, apperror.KindTokenExpired)
		assert.Equal(t, "jwt expired", appErr.Message)
	})
}

func TestAuthService_TokenTTL(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	roles := repositories.NewMockRoleRepository(models.RoleCustomer)
	authService := services.NewAuthService(mockRepo, roles, testJWTSecret, time.Hour)

	mockRepo.On("FindByEmail", ctx, "ttl@gmail.com").Return(nil, notFound("user")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	token, err := authService.RegisterUser(ctx, services.RegisterInput{Name: "T", Email: "ttl@gmail.com", Password: "123456"})
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), claims.ExpiresAt, 5)
}

func TestAuthService_CurrentUser(t *testing.T) {
	ctx := context.Background()
	roles := repositories.NewMockRoleRepository(models.RoleCustomer)

	t.Run("user missing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)
		mockRepo.On("FindByID", ctx, uint(1)).Return(nil, notFound("user")).Once()

		_, err := authService.CurrentUser(ctx, 1)
		appErr := assertKind(t, err, apperror.KindRecordNotFound)
		assert.Equal(t, "User not found!", appErr.Message)
	})

	t.Run("role missing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)
		mockRepo.On("FindByID", ctx, uint(1)).Return(&models.User{ID: 1, RoleID: 99}, nil).Once()

		_, err := authService.CurrentUser(ctx, 1)
		appErr := assertKind(t, err, apperror.KindRecordNotFound)
		assert.Equal(t, "Role not found!", appErr.Message)
	})

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)
		mockRepo.On("FindByID", ctx, uint(1)).Return(&models.User{ID: 1, Name: "Malay", RoleID: 1}, nil).Once()

		user, err := authService.CurrentUser(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, user.Role)
		assert.Equal(t, models.RoleCustomer, user.Role.Name)
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_RegisterUser_PasswordTooLong(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	roles := repositories.NewMockRoleRepository(models.RoleCustomer)
	authService := services.NewAuthService(mockRepo, roles, testJWTSecret, 0)

	mockRepo.On("FindByEmail", ctx, "long@gmail.com").Return(nil, notFound("user")).Once()
	_, err := authService.RegisterUser(ctx, services.RegisterInput{Name: "Long", Email: "long@gmail.com", Password: strings.Repeat("x", 73)})
	appErr := assertKind(t, err, apperror.KindValidation)
	assert.Equal(t, 422, appErr.Status())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
