package myjwt

import (
	"StorePilot/internal/config"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims 后台管理员身份载荷，admin_uuid 贯穿会话与动作的归属判定
type AdminClaims struct {
	AdminUuid string `json:"admin_uuid"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken 为管理员签发 HS256 令牌
func GenerateToken(adminUuid string, username string) (string, error) {
	conf := config.GetConfig()
	key := conf.JwtConfig.Key
	if key == "" {
		return "", errors.New("jwt key is empty")
	}

	expireHours := conf.JwtConfig.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}

	issuer := conf.JwtConfig.Issuer
	if issuer == "" {
		issuer = conf.MainConfig.AppName
	}

	now := time.Now()
	claims := AdminClaims{
		AdminUuid: adminUuid,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminUuid,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(key))
}

// ParseToken 校验令牌并还原管理员身份
func ParseToken(tokenString string) (*AdminClaims, error) {
	conf := config.GetConfig()
	key := conf.JwtConfig.Key
	if key == "" {
		return nil, errors.New("jwt key is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
