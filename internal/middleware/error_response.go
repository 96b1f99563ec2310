package middleware

import (
	"encoding/json"
	"net/http"
)

// errorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 内部エラーの詳細（スタックトレース、クエリ等）は決して含めない。
type errorResponseBody struct {
	Error string `json:"error"`
}

// WriteError は統一エラーフォーマット {"error": message} で
// HTTPエラーレスポンスを書き込む。
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponseBody{Error: message})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
