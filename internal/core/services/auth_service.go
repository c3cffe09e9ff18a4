package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/ports"
)

const minPasswordLength = 6

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   int64       `json:"expires_at"`
	Role        domain.Role `json:"role"`
}

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthService struct {
	admins ports.AdminRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *logrus.Entry

	// users serializes account changes so the last admin cannot be removed
	// by two concurrent deletes.
	users sync.Mutex
}

func NewAuthService(admins ports.AdminRepository, secret string, ttl time.Duration, log *logrus.Entry) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{admins: admins, secret: []byte(secret), ttl: ttl, now: time.Now, log: log}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.WithField("username", username).Warn("login for unknown admin")
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("username", username).Warn("login with wrong password")
		return nil, domain.ErrUnauthorized
	}

	role := roleOf(admin)
	exp := s.now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  admin.Username,
		"role": string(role),
		"exp":  exp.Unix(),
		"iat":  s.now().Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResponse{AccessToken: signed, TokenType: "bearer", ExpiresAt: exp.Unix(), Role: role}, nil
}

// Accounts stored before roles existed are admins.
func roleOf(a *domain.Admin) domain.Role {
	if a.Role == "" {
		return domain.RoleAdmin
	}
	return a.Role
}

// ParseToken returns the caller carried by a valid token.
func (s *AuthService) ParseToken(tokenStr string) (domain.Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	role, _ := claims["role"].(string)
	if !domain.Role(role).Valid() {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{Username: sub, Role: domain.Role(role)}, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet. An
// existing account keeps its password.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: bootstrap admin needs username and password", domain.ErrInvalidInput)
	}
	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.admins.Create(ctx, &domain.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	}); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("create admin: %w", err)
	}
	s.log.WithField("username", username).Info("bootstrap admin created")
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.AdminUser, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.AdminUser, 0, len(admins))
	for i := range admins {
		admins[i].Role = roleOf(&admins[i])
		out = append(out, admins[i].User())
	}
	return out, nil
}

// CreateUser adds an account. The role defaults to validator, which can log
// in but is refused by admin routes.
func (s *AuthService) CreateUser(ctx context.Context, req UserRequest) (*domain.AdminUser, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password needs at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	switch role {
	case "", "validador":
		role = domain.RoleValidator
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &domain.Admin{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	s.users.Lock()
	defer s.users.Unlock()
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.WithFields(logrus.Fields{"username": username, "role": role}).Info("user created")
	user := admin.User()
	return &user, nil
}

// DeleteUser removes username on behalf of actor. Nobody can delete their
// own account and the last admin always stays.
func (s *AuthService) DeleteUser(ctx context.Context, actor, username string) error {
	if username == actor {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidInput)
	}

	s.users.Lock()
	defer s.users.Unlock()

	admins, err := s.admins.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	var target *domain.Admin
	remaining := 0
	for i := range admins {
		if roleOf(&admins[i]) != domain.RoleAdmin {
			continue
		}
		if admins[i].Username == username {
			target = &admins[i]
			continue
		}
		remaining++
	}
	if target != nil && remaining == 0 {
		return fmt.Errorf("%w: cannot delete the last admin", domain.ErrInvalidInput)
	}

	if err := s.admins.Delete(ctx, username); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"username": username, "by": actor}).Info("user deleted")
	return nil
}
