// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 登録時に一度だけ作成され、以降は不変として扱う。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AuthUser は認証済みリクエストに紐づくユーザー情報を表す。
// トークンのクレームから復元され、リクエストコンテキストに格納される。
type AuthUser struct {
	ID       string
	Username string
}
