package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/courseboard/internal/middleware"
	"github.com/hitoshi/courseboard/internal/model"
)

// CourseServiceInterface はコースハンドラーが必要とするサービスインターフェース。
type CourseServiceInterface interface {
	// List は全コースを返す。
	List(ctx context.Context) ([]*model.Course, error)
	// Get は指定IDのコースを返す。
	Get(ctx context.Context, id string) (*model.Course, error)
	// Create は認証済みユーザーを所有者として新規コースを作成する。
	Create(ctx context.Context, owner *model.AuthUser, title, description string) (*model.Course, error)
	// Update は所有者によるコースの上書きを行う。
	Update(ctx context.Context, user *model.AuthUser, id, title, description string) (*model.Course, error)
	// Delete は所有者によるコースの削除を行う。
	Delete(ctx context.Context, user *model.AuthUser, id string) error
}

// CourseHandler はコース管理のHTTPハンドラー。
type CourseHandler struct {
	service CourseServiceInterface
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(service CourseServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

// courseRequest はコース作成・更新リクエストのボディ。
type courseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// courseResponse はコース情報のAPIレスポンス。
type courseResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// messageResponse は削除成功時のレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// List は全コース一覧を返す。認証不要。
// GET /courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]courseResponse, len(courses))
	for i, course := range courses {
		responses[i] = toCourseResponse(course)
	}

	writeJSON(w, http.StatusOK, responses)
}

// Get はコース詳細を返す。認証不要。
// GET /courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseResponse(course))
}

// Create は新規コースを作成する。
// POST /courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := authUserFrom(w, r)
	if !ok {
		return
	}

	req, ok := decodeCourseRequest(w, r)
	if !ok {
		return
	}

	course, err := h.service.Create(r.Context(), user, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseResponse(course))
}

// Update はコースのタイトル・説明を上書きする。
// PUT /courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := authUserFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	req, ok := decodeCourseRequest(w, r)
	if !ok {
		return
	}

	course, err := h.service.Update(r.Context(), user, id, req.Title, req.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseResponse(course))
}

// Delete はコースを完全に削除する。
// DELETE /courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := authUserFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), user, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Course deleted successfully"})
}

// authUserFrom はコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過していない場合は401を書き込みfalseを返す。
func authUserFrom(w http.ResponseWriter, r *http.Request) (*model.AuthUser, bool) {
	user, err := middleware.AuthUserFromContext(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return nil, false
	}
	return user, true
}

// decodeCourseRequest はリクエストボディを解析し、境界でバリデーションを行う。
// 不正な場合はエラーレスポンスを書き込みfalseを返す。
func decodeCourseRequest(w http.ResponseWriter, r *http.Request) (*courseRequest, bool) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, model.NewInvalidRequestError("Invalid request body"))
		return nil, false
	}

	if req.Title == "" {
		writeAPIError(w, model.NewInvalidRequestError("Title is required"))
		return nil, false
	}

	return &req, true
}

// toCourseResponse はドメインのCourseをレスポンス型に変換する。
func toCourseResponse(course *model.Course) courseResponse {
	return courseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		UserID:      course.OwnerID,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
