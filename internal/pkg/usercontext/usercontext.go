package usercontext

import "github.com/gofiber/fiber/v2"

const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "USER_ID"
	KeyIsLoggedIn  = "FROM_PROTECTED"
)

// UserContext is the authenticated identity attached to a request by the JWT
// middleware.
type UserContext struct {
	UserID     uint
	Email      string
	IsLoggedIn bool
}

// GetUserContext reads the identity from request locals; the zero value means
// no authenticated user.
func GetUserContext(c *fiber.Ctx) UserContext {
	if v := c.Locals(KeyUserContext); v != nil {
		if userCtx, ok := v.(UserContext); ok {
			return userCtx
		}
	}
	return UserContext{}
}

// SetUserContext attaches the identity to request locals.
func SetUserContext(c *fiber.Ctx, userCtx UserContext) {
	c.Locals(KeyUserContext, userCtx)
	c.Locals(KeyUserID, userCtx.UserID)
	c.Locals(KeyIsLoggedIn, userCtx.IsLoggedIn)
}
