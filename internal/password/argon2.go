// Package password はパスワードの一方向ハッシュ化と検証を提供する。
//
// argon2idを使用し、ハッシュはソルトとコストパラメータを自己記述する
// PHC形式（$argon2id$v=..$m=..,t=..,p=..$salt$digest）で保存する。
// 呼び出しごとに新しいランダムソルトを生成するため、同一パスワードでも
// 出力は毎回異なる。
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// Config はargon2idのコストパラメータ。
// 構築時に一度設定し、以降は不変として扱う。
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig は対話的ログインに適したデフォルトのコストパラメータを返す。
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher はargon2idによるハッシュ生成と検証を行う。
type Hasher struct {
	config Config
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
	keyLength   uint32
}

// NewHasher はHasherを生成する。コストパラメータが下限を下回る場合はエラーを返す。
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Hasher{config: cfg}, nil
}

// Hash はパスワードをハッシュ化しPHC形式の文字列を返す。
// 呼び出しごとに新しいソルトを生成する。
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	saltEncoded := base64.StdEncoding.EncodeToString(salt)
	hashEncoded := base64.StdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		saltEncoded,
		hashEncoded,
	), nil
}

// Verify は平文パスワードが保存済みハッシュと一致するかを返す。
// 保存ハッシュに埋め込まれたパラメータで再計算し、一定時間比較を行う。
// encodedHashが不正な形式の場合はエラーを投げずfalseを返す。
func (h *Hasher) Verify(password string, encodedHash string) bool {
	parsed, err := parsePHC(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		parsed.keyLength,
	)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1
}

func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}

	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	versionPart := parts[2]
	if !strings.HasPrefix(versionPart, "v=") {
		return nil, errors.New("missing argon2 version")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(versionPart, "v="))
	if err != nil {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt length")
	}

	hash, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(hash) == 0 {
		return nil, errors.New("invalid hash length")
	}

	return &parsedPHC{
		memory:      params.memory,
		time:        params.time,
		parallelism: params.parallelism,
		salt:        salt,
		hash:        hash,
		keyLength:   uint32(len(hash)),
	}, nil
}

type phcParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func parseParams(s string) (*phcParams, error) {
	p := &phcParams{}
	for _, kv := range strings.Split(s, ",") {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, errors.New("invalid parameter format")
		}

		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter value for %q", key)
		}

		switch key {
		case "m":
			p.memory = uint32(n)
		case "t":
			p.time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errors.New("invalid parallelism value")
			}
			p.parallelism = uint8(n)
		default:
			return nil, fmt.Errorf("unknown parameter %q", key)
		}
	}

	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return nil, errors.New("missing required parameters")
	}

	return p, nil
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("memory cost below minimum")
	}
	if cfg.Time < minTimeCost {
		return errors.New("time cost below minimum")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("parallelism below minimum")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("salt length below minimum")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("key length below minimum")
	}
	return nil
}
