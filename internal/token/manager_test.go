package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestManager(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret: []byte(secret),
		Issuer: "courseboard-test",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return m
}

func TestNewManager_EmptySecret_ReturnsError(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	m := newTestManager(t, "test-secret")

	tok, err := m.Issue("user-123", "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	user, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "user-123" {
		t.Errorf("ID = %q, want %q", user.ID, "user-123")
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
}

func TestIssue_TokenHasNoExpiryClaim(t *testing.T) {
	m := newTestManager(t, "test-secret")

	tok, err := m.Issue("user-123", "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// ペイロードを直接デコードしてexpクレームが存在しないことを確認する
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token segments = %d, want 3", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		t.Fatalf("failed to parse claims: %v", err)
	}

	if _, ok := claims["exp"]; ok {
		t.Error("expected no exp claim in issued token")
	}
	if _, ok := claims["iat"]; !ok {
		t.Error("expected iat claim in issued token")
	}
	if claims["sub"] != "user-123" {
		t.Errorf("sub = %v, want %q", claims["sub"], "user-123")
	}
}

func TestVerify_DifferentSecret_ReturnsSignatureError(t *testing.T) {
	issuing := newTestManager(t, "secret-a")
	verifying := newTestManager(t, "secret-b")

	tok, err := issuing.Issue("user-123", "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, err = verifying.Verify(tok)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("error = %v, want %v", err, ErrTokenSignature)
	}
}

func TestVerify_TamperedClaims_ReturnsSignatureError(t *testing.T) {
	m := newTestManager(t, "test-secret")

	tok, err := m.Issue("user-123", "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// ペイロードを別ユーザーのクレームに差し替え、署名はそのまま残す
	parts := strings.Split(tok, ".")
	forged := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"sub":"user-999","username":"mallory","iat":1}`),
	)
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = m.Verify(tampered)
	if !errors.Is(err, ErrTokenSignature) {
		t.Errorf("error = %v, want %v", err, ErrTokenSignature)
	}
}

func TestVerify_MalformedToken_ReturnsMalformedError(t *testing.T) {
	m := newTestManager(t, "test-secret")

	malformed := []string{
		"",
		"not.a.jwt",
		"onlyonesegment",
		"a.b",
	}

	for _, input := range malformed {
		_, err := m.Verify(input)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) error = %v, want %v", input, err, ErrTokenMalformed)
		}
	}
}

func TestVerify_UnsignedAlgorithm_Rejected(t *testing.T) {
	m := newTestManager(t, "test-secret")

	// alg:none のトークンは署名検証なしでは決して受理しない
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"user-123","username":"alice"}`))
	unsigned := header + "." + payload + "."

	if _, err := m.Verify(unsigned); err == nil {
		t.Error("expected error for alg:none token, got nil")
	}
}
