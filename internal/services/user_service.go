package services

import (
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// UpdateUserRequest is the admin edit of an account.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// UpdateProfileRequest is a user's edit of their own profile.
type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=255"`
}

// UserService manages accounts after signup.
type UserService struct {
	repo     repositories.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo, validate: newValidator()}
}

// ListUsers returns every account.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, &StorageError{Op: "list users", Err: err}
	}
	return users, nil
}

// GetUser returns one account.
func (s *UserService) GetUser(id string) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get user", "user", id)
	}
	return user, nil
}

// UpdateUser changes the name and role of an account.
func (s *UserService) UpdateUser(id string, req UpdateUserRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get user", "user", id)
	}
	user.Name = req.Name
	user.Role = models.Role(req.Role)
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(user); err != nil {
		return nil, repoError(err, "update user", "user", id)
	}
	return user, nil
}

// UpdateProfile changes the name and profile image of an account.
func (s *UserService) UpdateProfile(id string, req UpdateProfileRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get user", "user", id)
	}
	user.Name = req.Name
	user.ProfileImage = req.ProfileImage
	user.UpdatedAt = time.Now()
	if err := s.repo.Update(user); err != nil {
		return nil, repoError(err, "update user", "user", id)
	}
	return user, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return repoError(err, "delete user", "user", id)
	}
	return nil
}
