package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	errs "github.com/yungbote/cardfolio-backend/internal/pkg/errors"
	"github.com/yungbote/cardfolio-backend/internal/pkg/logger"
	"github.com/yungbote/cardfolio-backend/internal/repos"
	"github.com/yungbote/cardfolio-backend/internal/types"
	"github.com/yungbote/cardfolio-backend/internal/utils"
)

// AuthService owns the single-user login. The owner account is bootstrapped
// from OWNER_EMAIL / OWNER_PASSWORD on startup.
type AuthService interface {
	EnsureOwner(ctx context.Context) error
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(tokenString string) (uuid.UUID, error)
}

type authService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		log:       log.With("service", "AuthService"),
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) EnsureOwner(ctx context.Context) error {
	email := strings.TrimSpace(utils.GetEnv("OWNER_EMAIL", "", s.log))
	password := utils.GetEnv("OWNER_PASSWORD", "", s.log)
	if email == "" || password == "" {
		s.log.Warn("OWNER_EMAIL/OWNER_PASSWORD not set, login disabled until configured")
		return nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return fmt.Errorf("lookup owner: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}
	now := time.Now().UTC()
	owner := &types.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Save(ctx, nil, owner); err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	s.log.Info("Owner account created", "email", email)
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, nil, strings.TrimSpace(email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errs.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errs.ErrUnauthorized
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, errs.ErrUnauthorized
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, errs.ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errs.ErrUnauthorized
	}
	return userID, nil
}
