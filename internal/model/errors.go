package model

import "fmt"

// APIError はAPIレスポンスとして返すエラーを表す。
// ワイヤフォーマットは {"error": Message} の1フィールドのみで、
// Codeはハンドラー層でのHTTPステータスへのマッピングに使用する。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアント向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeInvalidPassword = "INVALID_PASSWORD"
	ErrCodeCourseNotFound  = "COURSE_NOT_FOUND"
	ErrCodeNotCourseOwner  = "NOT_COURSE_OWNER"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
)

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:    ErrCodeUsernameTaken,
		Message: "Username already exists",
	}
}

// NewUserNotFoundError はユーザー未登録エラーを生成する。
// ログイン時の失敗であり、404ではなく400系として扱う。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewInvalidPasswordError はパスワード不一致エラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPassword,
		Message: "Invalid password",
	}
}

// NewCourseNotFoundError はコース未検出エラーを生成する。
func NewCourseNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeCourseNotFound,
		Message: "Course not found",
	}
}

// NewNotCourseOwnerError は所有者以外による変更操作のエラーを生成する。
// actionには "update" または "delete" を指定する。
func NewNotCourseOwnerError(action string) *APIError {
	return &APIError{
		Code:    ErrCodeNotCourseOwner,
		Message: fmt.Sprintf("Not authorized to %s this course", action),
	}
}

// NewInvalidRequestError はリクエスト不正エラーを生成する。
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
	}
}
