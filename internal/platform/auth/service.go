package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrAuthFailed = errors.New("authentication failed")

// 管理者1名のみの運用なので、アカウントテーブルは持たない。
// 資格情報（ユーザ名とbcryptハッシュ）は設定ファイルから渡す。
type Service struct {
	username     string
	passwordHash string
	secret       []byte
}

func NewService(username, passwordHash, secret string) *Service {
	return &Service{
		username:     username,
		passwordHash: passwordHash,
		secret:       []byte(secret),
	}
}

func (s *Service) Secret() []byte { return s.secret }

func (s *Service) Login(username, password string) (string, error) {
	// 失敗理由（ユーザ名違い/パスワード違い）は区別して返さない
	if username != s.username {
		return "", ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": s.username,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}
