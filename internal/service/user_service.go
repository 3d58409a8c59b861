package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"restaurant-orders/internal/dto"
	"restaurant-orders/internal/models"
	"restaurant-orders/internal/utils"
	"restaurant-orders/pkg/database"

	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	tokens *utils.TokenIssuer
	log    *slog.Logger
}

func NewUserService(db *gorm.DB, tokens *utils.TokenIssuer, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{db: db, tokens: tokens, log: log.With(slog.String("component", "user_service"))}
}

func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", slog.String("username", username), slog.String("role", string(user.Role)))
	return &user, nil
}

// Login checks the credentials of an active user and issues a session
// token. Unknown users, inactive users and wrong passwords all fail with
// ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Scopes(database.ActiveOnly(false)).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.WarnContext(ctx, "login rejected", slog.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &dto.LoginResponse{
		Token:    token,
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	user, err := s.userByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}
	if !user.IsActive {
		return false, fmt.Errorf("%w: user %d", ErrAlreadyDeleted, id)
	}
	if err := database.SoftDelete(s.db.WithContext(ctx), user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) RestoreUser(ctx context.Context, id uint) (bool, error) {
	user, err := s.userByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsActive {
		return false, fmt.Errorf("%w: user %d", ErrAlreadyActive, id)
	}
	if err := database.Restore(s.db.WithContext(ctx), user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) userByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
