// Package auth は登録・ログインとトークン発行のドメインロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/courseboard/internal/model"
	"github.com/hitoshi/courseboard/internal/repository"
)

// PasswordHasher はパスワードのハッシュ化と検証のインターフェース。
// password.Hasherの部分集合として定義する。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encodedHash string) bool
}

// TokenIssuer はトークン発行のインターフェース。
// token.Managerの部分集合として定義する。
type TokenIssuer interface {
	Issue(subjectID, username string) (string, error)
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin()
}

// Result は登録・ログイン成功時の結果。
type Result struct {
	Token string
	User  model.AuthUser
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	metrics  MetricsRecorder
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		metrics:  metrics,
	}
}

// Register は新規ユーザーを登録し、トークンを発行する。
// ユーザー名が既に使用されている場合はUSERNAME_TAKENエラーを返す。
// 事前の存在チェックは補助であり、同時登録の競合はDBの一意制約で
// 決着する（勝者は1人、敗者は同じUSERNAME_TAKENエラーを受け取る）。
func (s *Service) Register(ctx context.Context, username, password string) (*Result, error) {
	// 1. ユーザー名の事前チェック
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	// 2. パスワードのハッシュ化
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. ユーザーの作成
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateUsername {
			// 事前チェック後に他のリクエストが同名で登録した場合
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// 4. トークンの発行
	tok, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &Result{
		Token: tok,
		User:  model.AuthUser{ID: user.ID, Username: user.Username},
	}, nil
}

// Login は認証情報を検証し、トークンを発行する。
// ユーザー未登録はUSER_NOT_FOUND、パスワード不一致はINVALID_PASSWORDを返す。
// どちらも400系のエラーであり、Bearerトークンの401とは区別する。
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	// 1. ユーザーの検索
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	// 2. パスワードの検証
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, model.NewInvalidPasswordError()
	}

	// 3. トークンの発行
	tok, err := s.issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return &Result{
		Token: tok,
		User:  model.AuthUser{ID: user.ID, Username: user.Username},
	}, nil
}
