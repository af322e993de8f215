// file: internals/middlewares/auth/jwt_auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helperAuth "bookingku_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // pakai cookie access_token jika tidak ada Bearer
}

// AuthJWT memverifikasi Bearer token dan hydrate locals yang dipakai helper:
// user_id, org_id, is_org_admin. Resolusi membership organisasi terjadi di
// issuer token (kolaborator eksternal), core ini hanya membaca claims.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token: Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) Parse + verifikasi algoritma
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		c.Locals("jwt_claims", claims)

		// user_id: ambil id/sub/user_id dalam urutan preferensi
		switch {
		case strClaim(claims, "id") != "":
			c.Locals(helperAuth.LocUserID, strClaim(claims, "id"))
		case strClaim(claims, "sub") != "":
			c.Locals(helperAuth.LocUserID, strClaim(claims, "sub"))
		case strClaim(claims, "user_id") != "":
			c.Locals(helperAuth.LocUserID, strClaim(claims, "user_id"))
		}

		// org_id (single tenant scope per token)
		if oid := strClaim(claims, "org_id"); oid != "" {
			c.Locals(helperAuth.LocOrgID, oid)
		}

		// email (opsional — dipakai checkout & notifikasi)
		if em := strClaim(claims, "email"); em != "" {
			c.Locals(helperAuth.LocUserEmail, em)
		}

		// is_org_admin
		if v, ok := claims["is_org_admin"]; ok {
			switch t := v.(type) {
			case bool:
				c.Locals(helperAuth.LocIsOrgAdmin, t)
			case string:
				s := strings.ToLower(strings.TrimSpace(t))
				c.Locals(helperAuth.LocIsOrgAdmin, s == "true" || s == "1" || s == "yes")
			}
		}

		return c.Next()
	}
}

// RequireOrgAdmin menolak request tanpa role admin organisasi.
func RequireOrgAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !helperAuth.IsOrgAdmin(c) {
			return fiber.NewError(fiber.StatusForbidden, "Akses ditolak")
		}
		return c.Next()
	}
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
