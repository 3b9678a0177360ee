package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by LoginUser for any authentication failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SignupRequest is the payload accepted by RegisterUser.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo         repositories.UserRepository
	jwtSecret        []byte
	tokenDurat       time.Duration
	allowAdminSignup bool
	validate         *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, allowAdminSignup bool) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:         userRepo,
		jwtSecret:        []byte(jwtSecret),
		tokenDurat:       tokenTTL,
		allowAdminSignup: allowAdminSignup,
		validate:         newValidator(),
	}
}

// RegisterUser validates the request, hashes the password and saves the user.
func (s *AuthService) RegisterUser(req SignupRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	role := models.RoleUser
	if req.Role == string(models.RoleAdmin) {
		if !s.allowAdminSignup {
			return nil, &ForbiddenError{Message: "admin accounts cannot be created through signup"}
		}
		role = models.RoleAdmin
	}

	if existing, err := s.userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, &ConflictError{Message: fmt.Sprintf("email '%s' already registered", req.Email)}
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, &StorageError{Op: "lookup user", Err: err}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ConflictError{Message: fmt.Sprintf("email '%s' already registered", req.Email)}
		}
		return nil, &StorageError{Op: "create user", Err: err}
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed JWT together with the user.
func (s *AuthService) LoginUser(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil || user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
