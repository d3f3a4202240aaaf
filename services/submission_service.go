package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/storage"
)

const (
	MaxFilesPerUpload = 10
	MaxFileSize       = 25 << 20 // 25 MiB

	minReviewScore = 0
	maxReviewScore = 100
)

// UploadFile: один файл из multipart-запроса.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ReviewInput struct {
	Status   models.SubmissionStatus `json:"status"`
	Score    *float64                `json:"score"`
	Feedback *string                 `json:"feedback"`
}

type SubmissionService interface {
	Upload(ctx context.Context, teamID string, round models.Round, files []UploadFile) (*models.Submission, error)
	Review(ctx context.Context, teamID string, round models.Round, reviewerID int, input ReviewInput) (*models.Submission, error)
}

type submissionService struct {
	teamRepo  repositories.TeamRepository
	uploader  storage.FileUploader
	notifier  teamNotifier
	publisher events.Publisher
	now       Clock
	logger    zerolog.Logger
}

func NewSubmissionService(
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	notifier teamNotifier,
	publisher events.Publisher,
	now Clock,
	logger zerolog.Logger,
) SubmissionService {
	if now == nil {
		now = systemClock
	}
	return &submissionService{
		teamRepo:  teamRepo,
		uploader:  uploader,
		notifier:  notifier,
		publisher: publisher,
		now:       now,
		logger:    logger.With().Str("service", "submissions").Logger(),
	}
}

func validateUpload(round models.Round, files []UploadFile) error {
	v := validator{}
	v.check(round.IsValid(), "round", "unknown round")
	v.check(len(files) > 0, "files", "at least one file is required")
	v.check(len(files) <= MaxFilesPerUpload, "files", fmt.Sprintf("at most %d files per upload", MaxFilesPerUpload))
	for i, f := range files {
		v.check(strings.TrimSpace(f.Name) != "", fmt.Sprintf("files[%d]", i), "file name is required")
		v.check(f.Size <= MaxFileSize, fmt.Sprintf("files[%d]", i), "file exceeds 25 MiB")
	}
	return v.err()
}

// Upload кладёт файлы в хранилище и дописывает их к заявке раунда.
// Первая загрузка создаёт заявку со статусом uploaded; повторная добавляет файлы и
// сбрасывает промежуточный статус reviewed обратно в uploaded. Раунд с итоговым
// решением (qualified / not-qualified) закрыт для загрузок.
func (s *submissionService) Upload(ctx context.Context, teamID string, round models.Round, files []UploadFile) (*models.Submission, error) {
	if err := validateUpload(round, files); err != nil {
		return nil, err
	}

	// Проверяем команду до загрузки, чтобы не оставлять мусор в бакете.
	current, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := checkRoundOpen(current, round); err != nil {
		return nil, err
	}

	uploaded := make([]models.SubmissionFile, 0, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := storage.SubmissionKey(teamID, round, f.Name)
		res, err := s.uploader.Upload(ctx, key, f.ContentType, f.Reader, f.Size)
		if err != nil {
			s.cleanup(keys)
			return nil, fmt.Errorf("failed to store %q: %w", f.Name, err)
		}
		keys = append(keys, key)
		size := res.Size
		if size <= 0 {
			size = f.Size
		}
		uploaded = append(uploaded, models.SubmissionFile{
			Filename:     key,
			OriginalName: f.Name,
			Size:         size,
			UploadedAt:   s.now(),
			URL:          res.Location,
		})
	}

	var result models.Submission
	team, err := s.teamRepo.Mutate(ctx, teamID, func(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
		if err := checkRoundOpen(team, round); err != nil {
			return err
		}
		now := s.now()
		sub := team.SubmissionFor(round)
		if sub == nil {
			team.Submissions = append(team.Submissions, models.Submission{
				Round:       round,
				Status:      models.SubmissionUploaded,
				Files:       uploaded,
				SubmittedAt: now,
			})
			sub = &team.Submissions[len(team.Submissions)-1]
		} else {
			sub.Files = append(sub.Files, uploaded...)
			sub.Status = models.SubmissionUploaded
			sub.SubmittedAt = now
			sub.ReviewedAt = nil
			sub.ReviewedBy = nil
			sub.Score = nil
		}
		team.LastActivity = now
		result = *sub
		return nil
	})
	if err != nil {
		s.cleanup(keys)
		return nil, mapRepoError(err)
	}

	s.logger.Info().Str("team_id", teamID).Str("round", string(round)).Int("files", len(uploaded)).Msg("Submission files uploaded")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeSubmissionUploaded,
		TeamID:    teamID,
		Payload:   result,
		Timestamp: s.now(),
	})
	if s.notifier != nil {
		s.notifier.Refresh(ctx, team)
	}
	return &result, nil
}

func checkRoundOpen(team *models.Team, round models.Round) error {
	if !team.IsActive {
		return fmt.Errorf("%w: team %s is inactive", ErrForbiddenOperation, team.TeamID)
	}
	if sub := team.SubmissionFor(round); sub != nil {
		if sub.Status == models.SubmissionQualified || sub.Status == models.SubmissionNotQualified {
			return fmt.Errorf("%w: %s is %s", ErrRoundClosed, round, sub.Status)
		}
	}
	return nil
}

// cleanup удаляет уже загруженные объекты; ошибки только логируются.
func (s *submissionService) cleanup(keys []string) {
	for _, key := range keys {
		if err := s.uploader.Delete(context.Background(), key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to remove orphaned upload")
		}
	}
}

func (s *submissionService) Review(ctx context.Context, teamID string, round models.Round, reviewerID int, input ReviewInput) (*models.Submission, error) {
	v := validator{}
	v.check(round.IsValid(), "round", "unknown round")
	v.check(input.Status.IsValid(), "status", "must be one of pending, uploaded, reviewed, qualified, not-qualified")
	if input.Score != nil {
		v.check(*input.Score >= minReviewScore && *input.Score <= maxReviewScore, "score", "must be between 0 and 100")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	var result models.Submission
	team, err := s.teamRepo.Mutate(ctx, teamID, func(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
		sub := team.SubmissionFor(round)
		if sub == nil {
			return fmt.Errorf("%w: team %s has no %s submission", ErrSubmissionNotFound, teamID, round)
		}
		now := s.now()
		sub.Status = input.Status
		sub.ReviewedAt = &now
		if reviewerID > 0 {
			id := reviewerID
			sub.ReviewedBy = &id
		}
		if input.Score != nil {
			score := *input.Score
			sub.Score = &score
		}
		if input.Feedback != nil {
			fb := strings.TrimSpace(*input.Feedback)
			sub.Feedback = &fb
		}
		result = *sub
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info().Str("team_id", teamID).Str("round", string(round)).Str("status", string(input.Status)).Msg("Submission reviewed")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeSubmissionReviewed,
		TeamID:    teamID,
		Payload:   result,
		Timestamp: s.now(),
	})
	if s.notifier != nil {
		s.notifier.Refresh(ctx, team)
	}
	return &result, nil
}
