// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ListingSanitizerService はユーザーが投稿するコースリスティングの
// タイトル・説明をサニタイズし、XSSなどのセキュリティリスクから
// 閲覧者を保護する。bluemondayライブラリを使用した許可リストベースの
// ポリシーで、安全なタグのみを通過させる。
package security

import "github.com/microcosm-cc/bluemonday"

// ListingSanitizerService はコースリスティングのサニタイズ機能のインターフェースを定義する。
// コースの保存前（作成・更新）に使用される。
type ListingSanitizerService interface {
	// SanitizeTitle はタイトルからすべてのHTMLタグを除去し、プレーンテキストを返す。
	SanitizeTitle(raw string) string

	// SanitizeDescription は説明をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, ul, ol, li, blockquote, pre, code, strong, em）のみを
	// 通過させ、script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeDescription(raw string) string
}

// listingSanitizer はListingSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type listingSanitizer struct {
	titlePolicy *bluemonday.Policy
	descPolicy  *bluemonday.Policy
}

// NewListingSanitizer はListingSanitizerServiceの新しいインスタンスを生成する。
// タイトルには全タグを除去するStrictPolicy、説明には基本的な整形タグのみを
// 許可するカスタムポリシーを使用する。
func NewListingSanitizer() *listingSanitizer {
	desc := bluemonday.NewPolicy()

	// 許可タグ: 基本的なテキスト整形のみ
	// script, iframe, style等は許可リストに含めないことで自動的に除去される
	// on*イベント属性はbluemondayのデフォルトで許可されない
	desc.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	return &listingSanitizer{
		titlePolicy: bluemonday.StrictPolicy(),
		descPolicy:  desc,
	}
}

// SanitizeTitle はタイトルからすべてのHTMLタグを除去する。
func (s *listingSanitizer) SanitizeTitle(raw string) string {
	return s.titlePolicy.Sanitize(raw)
}

// SanitizeDescription は説明をサニタイズして安全なHTMLを返す。
func (s *listingSanitizer) SanitizeDescription(raw string) string {
	return s.descPolicy.Sanitize(raw)
}
