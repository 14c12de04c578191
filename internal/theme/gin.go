package theme

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const cookieMaxAge = 365 * 24 * 3600

// PrefersColorSchemeHeader is the client hint carrying the system scheme.
const PrefersColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// CookieStorage persists values as cookies on a gin request.
type CookieStorage struct {
	c *gin.Context
}

// NewCookieStorage wraps c.
func NewCookieStorage(c *gin.Context) CookieStorage {
	return CookieStorage{c: c}
}

func (s CookieStorage) Get(key string) (string, bool) {
	v, err := s.c.Cookie(key)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s CookieStorage) Set(key, value string) {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, cookieMaxAge, "/", "", false, false)
}

// FromRequest builds the Preference for a gin request.
func FromRequest(c *gin.Context) *Preference {
	return NewPreference(NewCookieStorage(c), func() Theme {
		if t, ok := Parse(c.GetHeader(PrefersColorSchemeHeader)); ok {
			return t
		}
		return Light
	})
}
