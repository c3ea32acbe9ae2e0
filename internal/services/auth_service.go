package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"botmarket/internal/apperrors"
	"botmarket/internal/config"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

// AuthService handles registration, credential verification and token
// issuance/validation.
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, cfg: cfg}
}

// Register creates a new user with a hashed password. The plaintext
// password is never persisted or logged. A taken email or username is
// reported as a constraint violation.
func (s *AuthService) Register(req *schemas.RegisterRequest) (*models.User, error) {
	if existing, err := s.userRepo.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email already registered: %w", apperrors.ErrConstraintViolation)
	}
	if existing, err := s.userRepo.GetByUsername(req.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username already taken: %w", apperrors.ErrConstraintViolation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:            req.Email,
		Username:         req.Username,
		PasswordHash:     string(hash),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		IsActive:         true,
		SubscriptionTier: "free",
	}
	// Two concurrent registrations can pass the lookups above; the
	// unique indexes still reject the loser as a constraint violation.
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate resolves the identifier first as a username, then as an
// email, and verifies the password. It returns (nil, nil) on any
// mismatch so callers cannot tell whether the identifier existed.
func (s *AuthService) Authenticate(identifier, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(identifier)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		user, err = s.userRepo.GetByEmail(identifier)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// Login runs the full login sequence: resolve identity, verify the
// password, check the active flag, issue a token. Identity and password
// failures collapse into ErrInvalidCredentials; a disabled account is
// the one distinguishable outcome, ErrInactiveAccount.
func (s *AuthService) Login(identifier, password string) (*schemas.Token, error) {
	user, err := s.Authenticate(identifier, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.IsActive(user) {
		return nil, apperrors.ErrInactiveAccount
	}

	ttl := s.cfg.AccessTokenTTL()
	token, err := s.CreateAccessToken(user.ID, ttl)
	if err != nil {
		return nil, err
	}
	return &schemas.Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// IsActive reports whether the account is enabled.
func (s *AuthService) IsActive(user *models.User) bool {
	return user.IsActive
}

// IsVerified reports whether the account's email is verified.
func (s *AuthService) IsVerified(user *models.User) bool {
	return user.IsVerified
}

// CreateAccessToken issues a signed token binding {sub, exp} for the
// given subject. A non-positive ttl falls back to the configured one.
func (s *AuthService) CreateAccessToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.cfg.AccessTokenTTL()
	}
	method := jwt.GetSigningMethod(s.cfg.JWTAlgorithm)
	if method == nil {
		return "", fmt.Errorf("unknown signing algorithm %q", s.cfg.JWTAlgorithm)
	}
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry and returns the embedded
// subject. Every failure mode collapses into ErrInvalidCredentials.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != s.cfg.JWTAlgorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.ErrInvalidCredentials
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", apperrors.ErrInvalidCredentials
	}
	return subject, nil
}
