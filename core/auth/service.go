package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio-api/core/repository"
	"portfolio-api/core/validate"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnauthorized is returned for bad credentials and invalid, expired or revoked tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned when account data does not pass validation.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims are the JWT claims issued to admins.
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *Claims) UserID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

// Session is the result of a login or refresh.
type Session struct {
	User         *AdminUser `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
}

// Service authenticates admins and manages their tokens.
type Service struct {
	db     *gorm.DB
	users  *repository.Repository[AdminUser]
	cfg    Config
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an auth service. An empty secret is rejected.
func NewService(db *gorm.DB, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		db:     db,
		users:  repository.New[AdminUser](db),
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
		logger: logger,
		now:    time.Now,
	}, nil
}

// CreateUser registers an admin, or resets the password of an existing one.
func (s *Service) CreateUser(ctx context.Context, email, password string) (*AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validate.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &AdminUser{Email: email, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	return s.findByEmail(ctx, email)
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.findByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	return s.issue(user)
}

// Verify parses an access token and checks that it has not been revoked.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	return s.verify(ctx, token, tokenTypeAccess)
}

// Logout revokes the given access token.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return err
	}
	return s.revoke(ctx, claims)
}

// Refresh exchanges a refresh token for a new token pair. The used refresh
// token is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.verify(ctx, refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.User(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// User returns the admin with the given id.
func (s *Service) User(ctx context.Context, id uint) (*AdminUser, error) {
	return s.users.Get(ctx, id)
}

// PurgeRevoked drops revocations whose tokens have expired anyway.
func (s *Service) PurgeRevoked(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*AdminUser, error) {
	return s.users.First(ctx, repository.Filter{Where: map[string]any{"email": email}})
}

func (s *Service) issue(user *AdminUser) (*Session, error) {
	now := s.now()
	accessExp := now.Add(s.cfg.AccessTTL())

	access, err := s.sign(user, tokenTypeAccess, now, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(user, tokenTypeRefresh, now, now.Add(s.cfg.RefreshTTL()))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp,
	}, nil
}

func (s *Service) sign(user *AdminUser, typ string, issued, expires time.Time) (string, error) {
	claims := Claims{
		Email: user.Email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) verify(ctx context.Context, token, typ string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Type != typ || claims.ID == "" {
		return nil, ErrUnauthorized
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&RevokedToken{}).Where("token_id = ?", claims.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if count > 0 {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (s *Service) revoke(ctx context.Context, claims *Claims) error {
	expires := s.now()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&RevokedToken{TokenID: claims.ID, ExpiresAt: expires}).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Debug("Revoked token", zap.String("jti", claims.ID), zap.String("type", claims.Type))
	return nil
}
