package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/courseboard/internal/model"
)

// PostgresCourseRepo はPostgreSQLを使用したコースリポジトリ。
type PostgresCourseRepo struct {
	db *sql.DB
}

// NewPostgresCourseRepo はPostgresCourseRepoを生成する。
func NewPostgresCourseRepo(db *sql.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

// List は全コースを作成日時の昇順で返す。
func (r *PostgresCourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		 FROM courses ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := []*model.Course{}
	for rows.Next() {
		course := &model.Course{}
		if err := rows.Scan(
			&course.ID, &course.Title, &course.Description,
			&course.OwnerID, &course.CreatedAt, &course.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return courses, nil
}

// FindByID は指定IDのコースを取得する。見つからない場合はnilを返す。
func (r *PostgresCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	course := &model.Course{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, user_id, created_at, updated_at
		 FROM courses WHERE id = $1`,
		id,
	).Scan(
		&course.ID, &course.Title, &course.Description,
		&course.OwnerID, &course.CreatedAt, &course.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course by ID: %w", err)
	}

	return course, nil
}

// Create はコースを作成する。
func (r *PostgresCourseRepo) Create(ctx context.Context, course *model.Course) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (id, title, description, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		course.ID, course.Title, course.Description,
		course.OwnerID, course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	return nil
}

// Update はコースのタイトル・説明・更新日時を上書きする。
// user_idは更新対象に含めない（所有者は作成時に確定し不変）。
func (r *PostgresCourseRepo) Update(ctx context.Context, course *model.Course) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE courses SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		course.Title, course.Description, course.UpdatedAt, course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course not found: %s", course.ID)
	}

	return nil
}

// Delete は指定IDのコースを完全に削除する。
func (r *PostgresCourseRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM courses WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("course not found: %s", id)
	}

	return nil
}

// compile-time interface check
var _ CourseRepository = (*PostgresCourseRepo)(nil)
