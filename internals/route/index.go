// file: internals/route/index.go
package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authMiddleware "bookingku_backend/internals/middlewares/auth"
	routeDetails "bookingku_backend/internals/route/details"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// ===================== GROUPS =====================

	// PUBLIC → tanpa JWT (listing sesi, waiting list, webhook pembayaran)
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	// PRIVATE (USER) → JWT wajib
	log.Println("[INFO] Setting up PRIVATE (user) group...")
	user := app.Group("/api/u",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
	)

	// ADMIN (per organisasi) → JWT + role admin
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		authMiddleware.RequireOrgAdmin(),
	)

	// ===================== FEATURES =====================
	log.Println("[INFO] Setting up Booking routes...")
	routeDetails.PublicBookingRoutes(public, db)
	routeDetails.UserBookingRoutes(user, db)
	routeDetails.AdminBookingRoutes(admin, db)

	log.Println("✅ All routes ready")
}
