package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/courseboard/internal/middleware"
	"github.com/hitoshi/courseboard/internal/model"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	Logger            *slog.Logger
	RequestRecorder   middleware.RequestRecorder
	MetricsHandler    http.Handler

	// サービス
	AuthService   AuthServiceInterface
	CourseService CourseServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Logging
//
// 認証ゲート（Bearerトークン検証）はコース変更系ルートのグループにのみ適用する。
// 読み取り系（一覧・詳細）と認証ルートはゲートの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.RequestRecorder))

	authHandler := NewAuthHandler(deps.AuthService)
	courseHandler := NewCourseHandler(deps.CourseService)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", newHealthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 登録・ログイン
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// コース閲覧（誰でも可）
	r.Get("/courses", courseHandler.List)
	r.Get("/courses/{id}", courseHandler.Get)

	// --- 認証が必要なルート ---
	// Bearerトークンの検証を通過したリクエストのみ到達する。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

		r.Post("/courses", courseHandler.Create)
		r.Put("/courses/{id}", courseHandler.Update)
		r.Delete("/courses/{id}", courseHandler.Delete)
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIError は統一エラーフォーマットでAPIErrorを書き込む。
func writeAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	middleware.WriteError(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIError(w, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 登録・ログインの失敗はクライアントが修正可能な400系として扱い、
// 401はBearerトークンの欠落にのみ使用する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUsernameTaken:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound:
		return http.StatusBadRequest
	case model.ErrCodeInvalidPassword:
		return http.StatusBadRequest
	case model.ErrCodeCourseNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotCourseOwner:
		return http.StatusForbidden
	case model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
