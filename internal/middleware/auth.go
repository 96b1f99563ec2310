// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/courseboard/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authUserContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var authUserContextKey = contextKey("auth_user")

// TokenVerifier はトークン検証に必要なインターフェース。
// token.Managerの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*model.AuthUser, error)
}

// NewAuthMiddleware はAuthorizationヘッダーからBearerトークンを読み取り、
// 検証するミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// ヘッダーがない場合は401、トークンが無効な場合は403を返す。
// ストレージには一切アクセスしない。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取得
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			// 2. トークンの署名を検証
			authUser, err := verifier.Verify(tokenString)
			if err != nil {
				WriteError(w, http.StatusForbidden, "Invalid token")
				return
			}

			// 3. 認証済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), authUserContextKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken はAuthorizationヘッダー値からBearerトークンを取り出す。
func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

// AuthUserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AuthUserFromContext(ctx context.Context) (*model.AuthUser, error) {
	user, ok := ctx.Value(authUserContextKey).(*model.AuthUser)
	if !ok || user == nil || user.ID == "" {
		return nil, fmt.Errorf("authenticated user not found in context")
	}
	return user, nil
}

// ContextWithAuthUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuthUser(ctx context.Context, user *model.AuthUser) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}
