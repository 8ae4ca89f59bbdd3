package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/services"
)

const (
	sessionCookie = "cid_session"
	sessionLocal  = "browser_session"
)

// SessionMiddleware attaches the visitor's browser session, issuing a cookie
// the first time a visitor is seen.
func SessionMiddleware(registry services.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, created := registry.GetOrCreate(c.Cookies(sessionCookie))
		if created {
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    session.ID.String(),
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionLocal, session)
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) *services.BrowserSession {
	return c.Locals(sessionLocal).(*services.BrowserSession)
}
