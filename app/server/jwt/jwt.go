package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// 令牌的用途，写入 aud ，避免网站会话被当作管理接口令牌使用
const (
	AudienceSession = "session"
	AudienceAdmin   = "admin"
)

type JWT struct {
	key []byte
}

type User struct {
	ID       uint
	IsAdmin  bool
	Audience string
	Expires  int64 // Unix second
}

func New(key string) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	return &JWT{key: []byte(key)}, nil
}

// Key 返回签名密钥，给 echo-jwt 中间件使用
func (j *JWT) Key() []byte {
	return j.key
}

func (j *JWT) ParseUser(tokenString string, audience string) (*User, error) {
	// 检查是否有效
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return UserFromClaims(claims, audience)
}

// UserFromClaims 映射字段
func UserFromClaims(claims jwt.MapClaims, audience string) (*User, error) {
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return nil, fmt.Errorf("invalid id claim")
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp claim")
	}
	isAdmin, _ := claims["adm"].(bool)

	return &User{
		ID:       uint(id),
		IsAdmin:  isAdmin,
		Audience: audience,
		Expires:  int64(exp),
	}, nil
}

func (j *JWT) SignToken(user *User) (string, error) {
	// 创建声明
	claims := jwt.MapClaims{
		"id":  user.ID,
		"adm": user.IsAdmin,
		"aud": user.Audience,
		"exp": user.Expires,
	}

	// 创建令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// 签名并返回
	return token.SignedString(j.key)
}
