package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
)

const minPasswordLength = 8

// Имена claims, которые читает middleware.
const (
	ClaimUserID   = "user_id"
	ClaimRole     = "role"
	ClaimTeamID   = "team_id"
	ClaimMentorID = "mentor_id"
)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (string, *models.User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserInput struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	TeamID   *string         `json:"team_id,omitempty"`
	MentorID *string         `json:"mentor_id,omitempty"`
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       Clock
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, now Clock) AuthService {
	if now == nil {
		now = systemClock
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil, ErrAuthInvalidCredentials
		}
		return "", nil, mapRepoError(fmt.Errorf("failed to find user by email: %w", err))
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, ErrAuthInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	user.PasswordHash = ""

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		ClaimUserID: user.ID,
		ClaimRole:   user.Role,
		"exp":       now.Add(s.tokenTTL).Unix(),
		"iat":       now.Unix(),
	}
	if user.TeamID != nil {
		claims[ClaimTeamID] = *user.TeamID
	}
	if user.MentorID != nil {
		claims[ClaimMentorID] = *user.MentorID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *authService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	v := validator{}
	_, mailErr := mail.ParseAddress(input.Email)
	v.check(input.Email != "" && mailErr == nil, "email", "must be a valid email address")
	v.check(len(input.Password) >= minPasswordLength, "password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	v.check(input.Role.IsValid(), "role", "must be one of admin, judge, mentor, team")
	if input.Role == models.RoleTeam {
		v.check(derefString(input.TeamID) != "", "team_id", "is required for team accounts")
	}
	if input.Role == models.RoleMentor {
		v.check(derefString(input.MentorID) != "", "mentor_id", "is required for mentor accounts")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         input.Role,
	}
	// Привязки сохраняем только для соответствующей роли.
	if input.Role == models.RoleTeam {
		user.TeamID = input.TeamID
	}
	if input.Role == models.RoleMentor {
		user.MentorID = input.MentorID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}
	user.PasswordHash = ""
	return user, nil
}
