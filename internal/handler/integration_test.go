package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hitoshi/courseboard/internal/auth"
	"github.com/hitoshi/courseboard/internal/course"
	"github.com/hitoshi/courseboard/internal/model"
	"github.com/hitoshi/courseboard/internal/password"
	"github.com/hitoshi/courseboard/internal/repository"
	"github.com/hitoshi/courseboard/internal/security"
	"github.com/hitoshi/courseboard/internal/token"
)

// --- インメモリリポジトリ ---

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[username]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

type memCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*model.Course
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: map[string]*model.Course{}}
}

func (r *memCourseRepo) List(ctx context.Context) ([]*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

func (r *memCourseRepo) FindByID(ctx context.Context, id string) (*model.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *memCourseRepo) Create(ctx context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.courses[c.ID] = &copied
	return nil
}

func (r *memCourseRepo) Update(ctx context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *c
	r.courses[c.ID] = &copied
	return nil
}

func (r *memCourseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, id)
	return nil
}

// --- テストサーバー構築 ---

// newTestServer は実装コンポーネントを組み合わせた完全なAPIサーバーを返す。
// ハッシュのコストパラメータはテスト向けに下限まで下げている。
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	hasher, err := password.NewHasher(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("failed to create hasher: %v", err)
	}

	tokenManager, err := token.NewManager(token.Config{
		Secret: []byte("integration-test-secret"),
		Issuer: "courseboard-test",
	})
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}

	userRepo := newMemUserRepo()
	courseRepo := newMemCourseRepo()

	return NewRouter(&RouterDeps{
		TokenVerifier:     tokenManager,
		CORSAllowedOrigin: "http://localhost:3000",
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:       auth.NewService(userRepo, hasher, tokenManager, nil),
		CourseService:     course.NewService(courseRepo, security.NewListingSanitizer(), nil),
	})
}

func doJSON(t *testing.T, server http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, server http.Handler, username string) (token, userID string) {
	t.Helper()

	w := doJSON(t, server, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","password":"pw-`+username+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status = %d, want %d (body: %s)", username, w.Code, http.StatusOK, w.Body.String())
	}

	var body authResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("register %s: failed to decode body: %v", username, err)
	}
	return body.Token, body.User.ID
}

// --- シナリオテスト ---

// 登録から作成・更新・削除・再取得までの一連の流れを
// 実トークン・実ハッシュで検証する。
func TestAPI_FullCourseLifecycle(t *testing.T) {
	server := newTestServer(t)

	// aliceが登録しコースを作成する
	aliceToken, aliceID := registerUser(t, server, "alice")

	w := doJSON(t, server, http.MethodPost, "/courses", aliceToken,
		`{"title":"Algorithms","description":"intro"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}

	var created courseResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("create: failed to decode body: %v", err)
	}
	if created.UserID != aliceID {
		t.Errorf("user_id = %q, want %q", created.UserID, aliceID)
	}

	// bobが登録し、他人のコースの更新を試みて拒否される
	bobToken, _ := registerUser(t, server, "bob")

	w = doJSON(t, server, http.MethodPut, "/courses/"+created.ID, bobToken,
		`{"title":"Hijacked","description":""}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	// aliceは更新できる
	w = doJSON(t, server, http.MethodPut, "/courses/"+created.ID, aliceToken,
		`{"title":"Advanced Algorithms","description":"updated"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var updated courseResponse
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("update: failed to decode body: %v", err)
	}
	if updated.Title != "Advanced Algorithms" {
		t.Errorf("title = %q, want %q", updated.Title, "Advanced Algorithms")
	}
	if updated.UserID != aliceID {
		t.Errorf("user_id = %q, want unchanged %q", updated.UserID, aliceID)
	}

	// 更新後の内容は認証なしで閲覧できる
	w = doJSON(t, server, http.MethodGet, "/courses/"+created.ID, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status = %d, want %d", w.Code, http.StatusOK)
	}

	// aliceが削除する
	w = doJSON(t, server, http.MethodDelete, "/courses/"+created.ID, aliceToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var deleted messageResponse
	if err := json.NewDecoder(w.Body).Decode(&deleted); err != nil {
		t.Fatalf("delete: failed to decode body: %v", err)
	}
	if deleted.Message != "Course deleted successfully" {
		t.Errorf("message = %q, want %q", deleted.Message, "Course deleted successfully")
	}

	// 削除後の取得は404
	w = doJSON(t, server, http.MethodGet, "/courses/"+created.ID, "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestAPI_RegisterThenLogin(t *testing.T) {
	server := newTestServer(t)

	registerUser(t, server, "alice")

	// 正しいパスワードでログインできる
	w := doJSON(t, server, http.MethodPost, "/auth/login", "",
		`{"username":"alice","password":"pw-alice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var body authResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("login: failed to decode body: %v", err)
	}
	if body.Token == "" {
		t.Error("expected non-empty token")
	}

	// 誤ったパスワードは400
	w = doJSON(t, server, http.MethodPost, "/auth/login", "",
		`{"username":"alice","password":"wrong"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong password: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	// 同名の再登録は400
	w = doJSON(t, server, http.MethodPost, "/auth/register", "",
		`{"username":"alice","password":"other"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAPI_MutationWithoutToken_Returns401(t *testing.T) {
	server := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/courses"},
		{http.MethodPut, "/courses/some-id"},
		{http.MethodDelete, "/courses/some-id"},
	}

	for _, p := range paths {
		w := doJSON(t, server, p.method, p.path, "", `{"title":"x"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, w.Code, http.StatusUnauthorized)
		}

		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("%s %s: failed to decode body: %v", p.method, p.path, err)
		}
		if body.Error != "Access denied. No token provided." {
			t.Errorf("%s %s: error = %q, want %q", p.method, p.path, body.Error, "Access denied. No token provided.")
		}
	}
}

func TestAPI_ForeignSecretToken_Returns403(t *testing.T) {
	server := newTestServer(t)

	// 別のシークレットで署名されたトークンを作る
	foreign, err := token.NewManager(token.Config{
		Secret: []byte("some-other-secret"),
		Issuer: "courseboard-test",
	})
	if err != nil {
		t.Fatalf("failed to create foreign manager: %v", err)
	}
	forged, err := foreign.Issue("user-evil", "mallory")
	if err != nil {
		t.Fatalf("failed to issue forged token: %v", err)
	}

	w := doJSON(t, server, http.MethodPost, "/courses", forged, `{"title":"x"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Invalid token" {
		t.Errorf("error = %q, want %q", body.Error, "Invalid token")
	}
}

func TestAPI_ListCoursesIsPublic(t *testing.T) {
	server := newTestServer(t)

	aliceToken, _ := registerUser(t, server, "alice")
	doJSON(t, server, http.MethodPost, "/courses", aliceToken, `{"title":"Algorithms"}`)
	doJSON(t, server, http.MethodPost, "/courses", aliceToken, `{"title":"Databases"}`)

	w := doJSON(t, server, http.MethodGet, "/courses", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var courses []courseResponse
	if err := json.NewDecoder(w.Body).Decode(&courses); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("len(courses) = %d, want 2", len(courses))
	}
}

func TestAPI_HealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}
