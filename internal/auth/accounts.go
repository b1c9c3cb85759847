package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vidyank/vidyank-core/internal/validation"
)

func init() {
	validation.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).IsValid()
	}, "must be one of "+strings.Join(roleNames(), ", "))
	validation.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return validPasswordLength(fl.Field().String())
	}, passwordLengthMessage)
}

// NewAccountInput is what an administrator supplies to provision an account.
type NewAccountInput struct {
	Name        string  `json:"name" validate:"notblank"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"password"`
	Role        Role    `json:"role" validate:"role"`
	InstituteID *string `json:"instituteId,omitempty"`
}

// AccountUpdate holds the administratively mutable fields. Nil fields are
// left unchanged. Roles are fixed at creation.
type AccountUpdate struct {
	Name        *string
	InstituteID *string
	Password    *string
}

// AccountService provisions and administers accounts.
type AccountService struct {
	repo AccountRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(repo AccountRepository) *AccountService {
	return &AccountService{repo: repo}
}

// Create validates input, hashes the password and stores a new active account.
func (s *AccountService) Create(ctx context.Context, in NewAccountInput) (*Account, error) {
	if err := validateNewAccount(in); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		InstituteID:  emptyToNil(in.InstituteID),
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Update applies an administrative change to an existing account.
func (s *AccountService) Update(ctx context.Context, id string, upd AccountUpdate) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidAccount)
		}
		account.Name = name
	}
	if upd.InstituteID != nil {
		account.InstituteID = emptyToNil(upd.InstituteID)
	}
	if upd.Password != nil {
		if err := checkPasswordLength(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Deactivate marks the account inactive. Login fails from then on; tokens
// already issued remain valid until they expire.
func (s *AccountService) Deactivate(ctx context.Context, id string) (*Account, error) {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Get returns one account.
func (s *AccountService) Get(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns accounts matching filter.
func (s *AccountService) List(ctx context.Context, filter AccountFilter) ([]Account, error) {
	return s.repo.List(ctx, filter)
}

func validateNewAccount(in NewAccountInput) error {
	in.Email = NormalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	return nil
}

var passwordLengthMessage = fmt.Sprintf("must be %d to %d bytes long", MinPasswordLength, MaxPasswordLength)

// validPasswordLength bounds a password in bytes, the unit bcrypt limits.
func validPasswordLength(password string) bool {
	n := len(password)
	return n >= MinPasswordLength && n <= MaxPasswordLength
}

func checkPasswordLength(password string) error {
	if validPasswordLength(password) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidAccount, validation.Errors{{Field: "password", Message: passwordLengthMessage}})
}

// CanProvision reports whether an account holding creator may create an
// account with the target role. Institute administrators provision the
// people of their own institute only.
func CanProvision(creator, target Role) bool {
	switch creator {
	case RoleSuperAdmin:
		return target.IsValid()
	case RoleInstituteAdmin:
		return Allow(RoleTeacher, RoleStudent, RoleParent).Contains(target)
	case RoleTeacher, RoleStudent, RoleParent:
		return false
	}
	return false
}

func roleNames() []string {
	roles := AllRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
