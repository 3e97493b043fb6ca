package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/module/admin"
)

const (
	maxNameRunes     = 100
	minPasswordBytes = 8
	maxPasswordBytes = 72 // bcrypt ignores anything longer
)

var (
	errBadCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", nil)
	errDeactivated    = domain.NewAppError(domain.CodeUnauthorized, "account is deactivated", nil)
)

// Service signs admins in, registers new ones and looks up the signed-in
// admin.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Register(ctx context.Context, req RegisterRequest) (*Session, error)
	Profile(ctx context.Context, adminID uint) (*Profile, error)
}

// TokenIssuer signs access tokens. *pkg.TokenService implements it.
type TokenIssuer interface {
	Issue(adminID uint, email string) (string, time.Time, error)
}

// AdminStore is the slice of admin persistence that auth needs.
type AdminStore interface {
	GetByID(ctx context.Context, id uint) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) error
}

type authService struct {
	tokens TokenIssuer
	admins AdminStore
}

func NewService(tokens TokenIssuer, admins AdminStore) Service {
	return &authService{tokens: tokens, admins: admins}
}

// Login gives the same answer for an unknown email and a wrong password. A
// deactivated admin is told so only after the password matched.
func (s *authService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	a, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	switch {
	case domain.IsNotFound(err):
		return nil, errBadCredentials
	case err != nil:
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		return nil, errBadCredentials
	}
	if !a.Active {
		return nil, errDeactivated
	}
	return s.open(a)
}

// Register stores a new active admin under its lowercased email and signs
// it in. If signing fails the account still exists and can log in later.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if err := validateRegisterInput(name, email, req.Password); err != nil {
		return nil, err
	}

	hash, err := admin.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	a := &domain.Admin{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.open(a)
}

// Profile rejects tokens whose admin was deleted or deactivated after the
// token was issued.
func (s *authService) Profile(ctx context.Context, adminID uint) (*Profile, error) {
	a, err := s.admins.GetByID(ctx, adminID)
	switch {
	case domain.IsNotFound(err):
		return nil, domain.ErrUnauthorized
	case err != nil:
		return nil, err
	}
	if !a.Active {
		return nil, errDeactivated
	}
	p := profileOf(a)
	return &p, nil
}

func (s *authService) open(a *domain.Admin) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(a.ID, a.Email)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt.Unix(), Admin: profileOf(a)}, nil
}

func validateRegisterInput(name, email, password string) error {
	var msg string
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		msg = "name is required"
	case n > maxNameRunes:
		msg = "name must not exceed 100 characters"
	case email == "":
		msg = "email is required"
	case !bareAddress(email):
		msg = "email must be a valid email address"
	case len(password) < minPasswordBytes:
		msg = "password must be at least 8 characters"
	case len(password) > maxPasswordBytes:
		msg = "password must not exceed 72 characters"
	default:
		return nil
	}
	return domain.NewAppError(domain.CodeValidation, msg, nil)
}

// bareAddress rejects display-name and angle-bracket forms that
// mail.ParseAddress would otherwise accept.
func bareAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
