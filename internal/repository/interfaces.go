// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/courseboard/internal/model"
)

// ErrDuplicateUsername はユーザー名の一意制約違反を示す。
// 同時登録の競合はDBの一意制約が最終的に決着させ、敗者にはこのエラーが返る。
var ErrDuplicateUsername = errors.New("duplicate username")

// UserRepository はユーザー認証情報の永続化インターフェース。
type UserRepository interface {
	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// ユーザー名が既に存在する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
}

// CourseRepository はコースデータの永続化インターフェース。
type CourseRepository interface {
	// List は全コースを返す。フィルタ・ページネーションは行わない。
	List(ctx context.Context) ([]*model.Course, error)

	// FindByID は指定IDのコースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Course, error)

	// Create はコースを作成する。
	Create(ctx context.Context, course *model.Course) error

	// Update はコースのタイトル・説明・更新日時を上書きする。所有者は変更しない。
	Update(ctx context.Context, course *model.Course) error

	// Delete は指定IDのコースを完全に削除する。
	Delete(ctx context.Context, id string) error
}
