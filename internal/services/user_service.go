package services

import (
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

// UserService handles profile operations for the authenticated user.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfile applies a partial update to the user's own record.
// Only fields present in the request change; a duplicate email or
// username surfaces as a constraint violation.
func (s *UserService) UpdateProfile(user *models.User, req *schemas.UserUpdateRequest) (*models.User, error) {
	return s.userRepo.Update(user, req.Fields())
}

// DeleteAccount removes the user together with everything they own:
// access grants, orders, reviews and executions.
func (s *UserService) DeleteAccount(user *models.User) error {
	_, err := s.userRepo.Remove(user.ID)
	return err
}
