// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/courseboard/internal/auth"
	"github.com/hitoshi/courseboard/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、トークンを発行する。
	Register(ctx context.Context, username, password string) (*auth.Result, error)
	// Login は認証情報を検証し、トークンを発行する。
	Login(ctx context.Context, username, password string) (*auth.Result, error)
}

// AuthHandler は登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUserResponse はトークンに紐づくユーザー情報のレスポンス。
type authUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// authResponse は登録・ログイン成功時のレスポンス。
type authResponse struct {
	Token string           `json:"token"`
	User  authUserResponse `json:"user"`
}

// Register は新規ユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// Login はログインを処理する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// decodeCredentials はリクエストボディを解析し、境界でバリデーションを行う。
// 不正な場合はエラーレスポンスを書き込みfalseを返す。
func decodeCredentials(w http.ResponseWriter, r *http.Request) (*credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, model.NewInvalidRequestError("Invalid request body"))
		return nil, false
	}

	if req.Username == "" || req.Password == "" {
		writeAPIError(w, model.NewInvalidRequestError("Username and password are required"))
		return nil, false
	}

	return &req, true
}

// toAuthResponse はドメインのResultをレスポンス型に変換する。
func toAuthResponse(result *auth.Result) authResponse {
	return authResponse{
		Token: result.Token,
		User: authUserResponse{
			ID:       result.User.ID,
			Username: result.User.Username,
		},
	}
}
