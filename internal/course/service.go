// Package course はコースリスティングのドメインロジックを提供する。
// 読み取り操作は誰でも実行でき、変更操作は所有者のみが実行できる。
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/courseboard/internal/model"
	"github.com/hitoshi/courseboard/internal/repository"
	"github.com/hitoshi/courseboard/internal/security"
)

// MetricsRecorder はコース操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordCourseCreated()
	RecordCourseDeleted()
}

// Service はコース管理のサービス層。
// 所有権チェックを含むビジネスロジックを提供する。
type Service struct {
	courseRepo repository.CourseRepository
	sanitizer  security.ListingSanitizerService
	metrics    MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	courseRepo repository.CourseRepository,
	sanitizer security.ListingSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		courseRepo: courseRepo,
		sanitizer:  sanitizer,
		metrics:    metrics,
	}
}

// List は全コースを返す。認証不要。
func (s *Service) List(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// Get は指定IDのコースを返す。認証不要。
// 見つからない場合はCOURSE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	if course == nil {
		return nil, model.NewCourseNotFoundError()
	}
	return course, nil
}

// Create は認証済みユーザーを所有者として新規コースを作成する。
// 所有者は作成時に確定し、以降変更されない。
func (s *Service) Create(ctx context.Context, owner *model.AuthUser, title, description string) (*model.Course, error) {
	now := time.Now()
	course := &model.Course{
		ID:          uuid.New().String(),
		Title:       s.sanitizer.SanitizeTitle(title),
		Description: s.sanitizer.SanitizeDescription(description),
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCourseCreated()
	}

	slog.Info("course created",
		slog.String("course_id", course.ID),
		slog.String("owner_id", owner.ID),
	)

	return course, nil
}

// Update は所有者によるコースのタイトル・説明の上書きを行う。
// 存在チェックを所有権チェックより先に行うため、所有者以外が
// 存在しないIDを指定した場合もCOURSE_NOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, user *model.AuthUser, id, title, description string) (*model.Course, error) {
	// 1. 存在チェック
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	if course == nil {
		return nil, model.NewCourseNotFoundError()
	}

	// 2. 所有権チェック
	if !isOwner(user, course) {
		return nil, model.NewNotCourseOwnerError("update")
	}

	// 3. 上書き保存（所有者は変更しない）
	course.Title = s.sanitizer.SanitizeTitle(title)
	course.Description = s.sanitizer.SanitizeDescription(description)
	course.UpdatedAt = time.Now()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return course, nil
}

// Delete は所有者によるコースの完全削除を行う。
// チェックの順序はUpdateと同じ（存在チェック → 所有権チェック）。
func (s *Service) Delete(ctx context.Context, user *model.AuthUser, id string) error {
	// 1. 存在チェック
	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find course: %w", err)
	}
	if course == nil {
		return model.NewCourseNotFoundError()
	}

	// 2. 所有権チェック
	if !isOwner(user, course) {
		return model.NewNotCourseOwnerError("delete")
	}

	// 3. 削除（ソフトデリートなし）
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCourseDeleted()
	}

	slog.Info("course deleted",
		slog.String("course_id", id),
		slog.String("owner_id", user.ID),
	)

	return nil
}

// isOwner は指定ユーザーがコースの所有者かを判定する。
// UpdateとDeleteで共有する唯一の所有権述語。
func isOwner(user *model.AuthUser, course *model.Course) bool {
	return course.OwnerID == user.ID
}
