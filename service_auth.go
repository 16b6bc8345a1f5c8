package tracker

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// AuthService registers users and exchanges credentials for tokens
type AuthService struct {
	serviceBase
	repo   RepositoryManager
	hasher PasswordAuthenticator
	tokens TokenService
}

// NewAuthService returns a new AuthService
func NewAuthService(repo RepositoryManager, hasher PasswordAuthenticator, tokens TokenService, opts ...ServiceOption) *AuthService {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &AuthService{
		serviceBase: newServiceBase(opts...),
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// Register creates a user and returns a token for it
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during user registration")
	default:
	}

	email := normalizeEmail(req.Email)
	req.Email = email

	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Users().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email")
	}
	if exists {
		s.emitAuth(ctx, ActivityEventRegisterFailure, email, "duplicate email")
		return nil, ConflictError("user", "Email already exists: "+email)
	}

	hash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	txCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err = s.repo.RunInTx(txCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		s.emitAuth(ctx, ActivityEventRegisterFailure, email, err.Error())
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	token, err := s.tokens.Issue(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Register failed to issue token", "error", err)
		return nil, err
	}

	s.activity.emit(ctx, ActivityEventRegisterSuccess, ActorRef{ID: user.ID.String(), Type: "user", Role: role.String()}, "user", user.ID.String(), map[string]any{
		"email": email,
	})

	return &AuthResponse{
		Token:   token,
		Message: "User registered successfully",
		User:    NewUserView(user),
	}, nil
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during login")
	default:
	}

	email := normalizeEmail(req.Email)
	req.Email = email

	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	user, err := s.repo.Users().FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			s.emitAuth(ctx, ActivityEventLoginFailure, email, "unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login identity lookup error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	if err := s.hasher.ComparePasswordAndHash(req.Password, user.PasswordHash); err != nil {
		s.emitAuth(ctx, ActivityEventLoginFailure, email, "password mismatch")
		return nil, ErrInvalidCredentials
	}

	if _, err := ParseRole(string(user.Role)); err != nil {
		s.logger.Error("Login user has unknown role", "email", email, "role", user.Role)
		return nil, err
	}

	token, err := s.tokens.Issue(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login failed to issue token", "error", err)
		return nil, err
	}

	s.activity.emit(ctx, ActivityEventLoginSuccess, ActorRef{ID: user.ID.String(), Type: "user", Role: user.Role.String()}, "user", user.ID.String(), map[string]any{
		"email": email,
	})

	return &AuthResponse{
		Token:   token,
		Message: "Login successful",
		User:    NewUserView(user),
	}, nil
}

func (s *AuthService) emitAuth(ctx context.Context, eventType ActivityEventType, email, reason string) {
	s.activity.emit(ctx, eventType, ActorRef{Type: "unknown"}, "user", "", map[string]any{
		"email":  email,
		"reason": reason,
	})
}
