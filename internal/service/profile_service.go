package service

import (
	"context"
	"fmt"
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/repository"
	"strings"
)

type UpdateProfileReq struct {
	FullName  string `json:"fullName" binding:"max=255" example:"Awa Koné"`
	ExamLevel string `json:"examLevel" binding:"max=16" example:"CM"`
}

type ProfileService struct {
	Repo *repository.ProfileRepository
}

func NewProfileService(repo *repository.ProfileRepository) *ProfileService {
	return &ProfileService{Repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.Repo.FindByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileReq) (*model.Profile, error) {
	p, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.FullName = strings.TrimSpace(req.FullName)
	p.ExamLevel = strings.ToUpper(strings.TrimSpace(req.ExamLevel))
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}
