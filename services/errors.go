package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/hackathon-portal/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	ErrTeamNotFound       = fmt.Errorf("team %w", errNotFoundSuffix)
	ErrMentorNotFound     = fmt.Errorf("mentor %w", errNotFoundSuffix)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", errNotFoundSuffix)
	ErrUserNotFound       = fmt.Errorf("user %w", errNotFoundSuffix)

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed = errors.New("validation failed")
	ErrMentorAtCapacity = errors.New("mentor has no free capacity")
	ErrRoundClosed      = errors.New("round already judged")

	// Ошибки конфликтов
	ErrConflict = errors.New("resource already exists")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Хранилище состояния недоступно (Redis и т.п.)
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// errNotFoundSuffix позволяет errors.Is(ErrTeamNotFound, ErrNotFound).
var errNotFoundSuffix = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string        { return "not found" }
func (notFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError перечисляет ошибки по полям; errors.Is(err, ErrValidationFailed) == true.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// validator накапливает ошибки полей.
type validator map[string]string

func (v validator) check(ok bool, field, message string) {
	if !ok {
		if _, exists := v[field]; !exists {
			v[field] = message
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// mapRepoError переводит ошибки репозиториев в ошибки сервисного слоя.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMentorNotFound):
		return ErrMentorNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrTeamIDConflict),
		errors.Is(err, repositories.ErrTeamNameConflict),
		errors.Is(err, repositories.ErrMentorIDConflict),
		errors.Is(err, repositories.ErrMentorEmailConflict),
		errors.Is(err, repositories.ErrUserEmailConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repositories.ErrTeamMentorInvalid):
		return ErrMentorNotFound
	case errors.Is(err, repositories.ErrUserTeamInvalid):
		return fmt.Errorf("%w: team does not exist", ErrValidationFailed)
	case errors.Is(err, repositories.ErrUserMentorInvalid):
		return fmt.Errorf("%w: mentor does not exist", ErrValidationFailed)
	case errors.Is(err, repositories.ErrFeedbackTeamInvalid):
		return ErrTeamNotFound
	case repositories.IsConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
