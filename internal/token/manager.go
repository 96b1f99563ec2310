// Package token はアクセストークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、サーバー側に状態を持たない。
// 有効期限クレーム（exp）は意図的に設定しない。失効リストも存在せず、
// トークンの有効性は署名検証のみで決まる（既知の制約として扱う）。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/courseboard/internal/model"
)

var (
	// ErrTokenMalformed はトークンがJWTとして解析できないことを示す。
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignature は署名検証に失敗したことを示す。
	// 別のシークレットや別のアルゴリズムで署名されたトークン、
	// 改ざんされたトークンが該当する。
	ErrTokenSignature = errors.New("invalid token signature")
)

// Config はトークンマネージャーの設定。
type Config struct {
	// Secret はHS256署名用のプロセス全体で共有するシークレット。
	Secret []byte
	// Issuer はissクレームに設定する発行者名。
	Issuer string
}

// Manager はトークンの発行と検証を行う。
// 構築後は不変であり、並行利用できる。
type Manager struct {
	config Config
}

// claims はトークンに埋め込むクレームセット。
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewManager はManagerを生成する。シークレットが空の場合はエラーを返す。
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}

	return &Manager{config: cfg}, nil
}

// Issue は指定ユーザーに紐づくトークンを発行する。
// クレームは {sub, username, iat} のみで、expは設定しない。
func (m *Manager) Issue(subjectID, username string) (string, error) {
	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subjectID,
			Issuer:   m.config.Issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(m.config.Secret)
}

// Verify はトークンを検証し、有効な場合は埋め込まれたユーザー情報を返す。
// 署名検証を最優先で行い、失敗時はfail closedで拒否する。
// HS256以外のアルゴリズム（alg:noneを含む）は受け付けない。
func (m *Manager) Verify(tokenString string) (*model.AuthUser, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&claims{},
		func(t *jwt.Token) (interface{}, error) {
			return m.config.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrTokenSignature
		}
		return nil, ErrTokenMalformed
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if c.Subject == "" {
		return nil, ErrTokenMalformed
	}

	return &model.AuthUser{
		ID:       c.Subject,
		Username: c.Username,
	}, nil
}
