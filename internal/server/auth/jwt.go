package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 定义访问令牌的负载
// 用户令牌的 ID(jti) 为会话令牌，需与 sessions 表中的有效会话对应；管理员令牌无状态
type Claims struct {
	Kind string `json:"kind"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var ErrUnknownKind = errors.New("unknown_token_kind")

// SignToken 生成访问令牌
func SignToken(kind, subject, sessionToken, role string, ttl time.Duration, secret string) (string, time.Time, error) {
	if kind != KindUser && kind != KindAdmin {
		return "", time.Time{}, ErrUnknownKind
	}
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		Kind: kind,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionToken,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	return s, exp, err
}

// ParseAndValidate 解析并校验访问令牌
func ParseAndValidate(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Kind != KindUser && claims.Kind != KindAdmin {
		return nil, ErrUnknownKind
	}
	if claims.Kind == KindUser && claims.ID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// BearerToken 从 Authorization 头中取出令牌
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// GenerateToken 生成高熵的随机会话令牌（Base64 URL 编码）
func GenerateToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultTokenBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateOTP 生成指定位数的数字验证码
func GenerateOTP(digits int) (string, error) {
	if digits <= 0 {
		digits = 6
	}
	var sb strings.Builder
	sb.Grow(digits)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}
