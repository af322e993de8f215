// file: internals/helpers/auth/claims.go
package helperauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Keys yang dihydrate middleware AuthJWT ke c.Locals
const (
	LocUserID     = "user_id"
	LocOrgID      = "org_id"
	LocIsOrgAdmin = "is_org_admin"
	LocUserEmail  = "user_email"
)

// GetUserIDFromToken mengambil user_id (UUID) dari locals hasil AuthJWT.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocUserID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id tidak valid")
	}
	return id, nil
}

// GetOrgIDFromToken mengambil org_id (tenant) dari locals hasil AuthJWT.
// Resolusi tenant & membership dilakukan di luar core ini; token dipercaya.
func GetOrgIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocOrgID).(string)
	if !ok || strings.TrimSpace(v) == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Scope organisasi tidak ditemukan di token")
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "org_id tidak valid")
	}
	return id, nil
}

// GetEmailFromToken: best-effort; "" kalau token tidak membawa claim email.
func GetEmailFromToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocUserEmail).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func IsOrgAdmin(c *fiber.Ctx) bool {
	v, ok := c.Locals(LocIsOrgAdmin).(bool)
	return ok && v
}
