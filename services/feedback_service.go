package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
)

const maxFeedbackLength = 4000

// Author: кто оставляет или читает отзыв (из JWT).
type Author struct {
	UserID   int
	Role     models.UserRole
	TeamID   string
	MentorID string
}

type FeedbackInput struct {
	Message string        `json:"message"`
	Rating  *int          `json:"rating"`
	Round   *models.Round `json:"round"`
}

type FeedbackService interface {
	AddFeedback(ctx context.Context, author Author, teamID string, input FeedbackInput) (*models.Feedback, error)
	ListFeedback(ctx context.Context, viewer Author, teamID string) ([]*models.Feedback, error)
}

type feedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	teamRepo     repositories.TeamRepository
	publisher    events.Publisher
	now          Clock
	logger       zerolog.Logger
}

func NewFeedbackService(
	feedbackRepo repositories.FeedbackRepository,
	teamRepo repositories.TeamRepository,
	publisher events.Publisher,
	now Clock,
	logger zerolog.Logger,
) FeedbackService {
	if now == nil {
		now = systemClock
	}
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		teamRepo:     teamRepo,
		publisher:    publisher,
		now:          now,
		logger:       logger.With().Str("service", "feedback").Logger(),
	}
}

// canAccess: ментор видит только свои команды, команда только себя, судьи и админы всех.
func canAccess(who Author, team *models.Team) bool {
	switch who.Role {
	case models.RoleAdmin, models.RoleJudge:
		return true
	case models.RoleMentor:
		return who.MentorID != "" && derefString(team.MentorID) == who.MentorID
	case models.RoleTeam:
		return who.TeamID != "" && who.TeamID == team.TeamID
	}
	return false
}

func (s *feedbackService) AddFeedback(ctx context.Context, author Author, teamID string, input FeedbackInput) (*models.Feedback, error) {
	if author.Role == models.RoleTeam {
		return nil, ErrForbiddenOperation
	}

	message := strings.TrimSpace(input.Message)
	v := validator{}
	v.check(message != "", "message", "is required")
	v.check(len(message) <= maxFeedbackLength, "message", fmt.Sprintf("must not exceed %d characters", maxFeedbackLength))
	if input.Rating != nil {
		v.check(*input.Rating >= 1 && *input.Rating <= 5, "rating", "must be between 1 and 5")
	}
	if input.Round != nil {
		v.check(input.Round.IsValid(), "round", "unknown round")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !canAccess(author, team) {
		return nil, ErrForbiddenOperation
	}

	fb := &models.Feedback{
		TeamID:     teamID,
		AuthorID:   author.UserID,
		AuthorRole: author.Role,
		Round:      input.Round,
		Message:    message,
		Rating:     input.Rating,
	}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, mapRepoError(err)
	}

	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeFeedbackAdded,
		TeamID:    teamID,
		Payload:   fb,
		Timestamp: s.now(),
	})
	return fb, nil
}

func (s *feedbackService) ListFeedback(ctx context.Context, viewer Author, teamID string) ([]*models.Feedback, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !canAccess(viewer, team) {
		return nil, ErrForbiddenOperation
	}
	list, err := s.feedbackRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return list, nil
}
