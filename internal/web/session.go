package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "cartshare_session"

var ErrNoSession = errors.New("no valid session")

// Session is the per-browser state: which household, who, and the list
// currently shown.
type Session struct {
	JoinCode    string
	Username    string
	CurrentList string
}

type sessionClaims struct {
	JoinCode    string `json:"join_code"`
	Username    string `json:"username"`
	CurrentList string `json:"current_list"`
	jwt.RegisteredClaims
}

// SessionManager stores sessions in an HMAC-signed JWT cookie.
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	secure    bool
}

func NewSessionManager(secretKey string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		secure:    secure,
	}
}

func (m *SessionManager) encode(sess *Session) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		JoinCode:    sess.JoinCode,
		Username:    sess.Username,
		CurrentList: sess.CurrentList,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) decode(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.JoinCode == "" || claims.Username == "" {
		return nil, ErrNoSession
	}

	return &Session{
		JoinCode:    claims.JoinCode,
		Username:    claims.Username,
		CurrentList: claims.CurrentList,
	}, nil
}

// Read returns the session carried by r or ErrNoSession.
func (m *SessionManager) Read(r *http.Request) (*Session, error) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return m.decode(c.Value)
}

func (m *SessionManager) Write(w http.ResponseWriter, sess *Session) error {
	value, err := m.encode(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
