package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess      = "access"
	PurposeVerifyEmail = "verify_email"
)

// Claims Subject 为用户 ID
type Claims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

func (j *JWTer) Issue(uid, email, name, role string) (string, error) {
	return j.sign(Claims{Email: email, Name: name, Role: role, Purpose: PurposeAccess}, uid, j.TTL)
}

// IssueVerifyEmail 邮箱验证用，和 access token 共用密钥但 purpose 不同
func (j *JWTer) IssueVerifyEmail(uid, email string, ttl time.Duration) (string, error) {
	return j.sign(Claims{Email: email, Purpose: PurposeVerifyEmail}, uid, ttl)
}

func (j *JWTer) sign(c Claims, uid string, ttl time.Duration) (string, error) {
	if len(j.Secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    j.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(j.Secret)
}

// Parse 只接受 access token
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	return j.ParsePurpose(tokenStr, PurposeAccess)
}

func (j *JWTer) ParsePurpose(tokenStr, purpose string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(j.Leeway), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	if c.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if c.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", c.Purpose, purpose)
	}
	return c, nil
}
