package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/medfinder-backend/internal/users"
	"github.com/angelmondragon/medfinder-backend/pkg/config"
	"github.com/angelmondragon/medfinder-backend/pkg/db"
	"github.com/angelmondragon/medfinder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/medfinder-backend/pkg/errors"
	"github.com/angelmondragon/medfinder-backend/pkg/security"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 100
	maxFullNameLength = 200
)

// RegisterService handles self-service signup.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	UserRepo       userRepository
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	users       userRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &registerService{
		users:       params.UserRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := users.NormalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if details := validateRegistration(email, req.Password, fullName); len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid registration").WithDetails(details)
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return users.FromModel(user), nil
}

func validateRegistration(email, password, fullName string) []string {
	var details []string
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		details = append(details, "email must be a valid address")
	}
	if n := utf8.RuneCountInString(password); n < minPasswordLength || n > maxPasswordLength {
		details = append(details, fmt.Sprintf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength))
	}
	if fullName == "" {
		details = append(details, "full_name is required")
	} else if utf8.RuneCountInString(fullName) > maxFullNameLength {
		details = append(details, fmt.Sprintf("full_name must be at most %d characters", maxFullNameLength))
	}
	return details
}
