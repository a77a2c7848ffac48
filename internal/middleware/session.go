package middleware

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/securecookie"

	"secrm-eiga.dev/web/internal/platform/requestctx"
)

const (
	sessionCookieName = "SECRM_WEB_SESSION"
	sessionLifetime   = 30 * 24 * time.Hour
)

// SessionData is persisted in a signed cookie. The chat transcript itself lives
// server-side, keyed by ID.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	dirty bool
}

var (
	sessionMu     sync.RWMutex
	sessionCodec  = newSessionCodec(ephemeralKey())
	sessionSecure bool
)

// ConfigureSession sets the cookie signing key and Secure flag. An empty key
// keeps the process-ephemeral key and reports ephemeral=true.
func ConfigureSession(signingKey string, secure bool) (ephemeral bool) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessionSecure = secure
	if strings.TrimSpace(signingKey) == "" {
		return true
	}
	sessionCodec = newSessionCodec([]byte(signingKey))
	return false
}

func newSessionCodec(hashKey []byte) *securecookie.SecureCookie {
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionLifetime / time.Second))
	return codec
}

func codec() *securecookie.SecureCookie {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionCodec
}

func secureCookies() bool {
	sessionMu.RLock()
	defer sessionMu.RUnlock()
	return sessionSecure
}

func ephemeralKey() []byte {
	if key := securecookie.GenerateRandomKey(32); key != nil {
		return key
	}
	return []byte("insecure-dev-key-please-set-SECRM_WEB_SESSION_SIGNING_KEY")
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		ctx = requestctx.WithSessionID(ctx, sd.ID)

		rw := NewResponseRecorder(w)
		// the cookie must be set before the first write
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		if !rw.wrote && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := codec().Decode(sessionCookieName, c.Value, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	encoded, err := codec().Encode(sessionCookieName, sd)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	})
}

// RegenerateID assigns a new session ID and CSRF token.
func (s *SessionData) RegenerateID() {
	s.ID = randID()
	s.CSRFToken = newCSRFToken()
	s.MarkDirty()
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
