// file: internals/route/details/booking_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bookingController "bookingku_backend/internals/features/booking/bookings/controller"
	bookingService "bookingku_backend/internals/features/booking/bookings/service"
	instanceController "bookingku_backend/internals/features/booking/instances/controller"
	tmplController "bookingku_backend/internals/features/booking/templates/controller"
	tmplService "bookingku_backend/internals/features/booking/templates/service"
	wlController "bookingku_backend/internals/features/booking/waitlist/controller"
	wlService "bookingku_backend/internals/features/booking/waitlist/service"
	notifService "bookingku_backend/internals/features/notifications/service"
	paymentController "bookingku_backend/internals/features/payment/controller"
	paymentService "bookingku_backend/internals/features/payment/service"
	"bookingku_backend/internals/middlewares"
)

// bookingStack: wiring service inti yang dipakai lintas route group.
type bookingStack struct {
	Generator *tmplService.GeneratorService
	Engine    *bookingService.Engine
	Waitlist  *wlService.Service
}

func newBookingStack(db *gorm.DB) bookingStack {
	notifier := notifService.NewLogNotifier()
	waitlist := wlService.NewService(db, notifier)
	engine := bookingService.NewEngine(db, paymentService.NewMidtransGateway(), notifier, waitlist)
	return bookingStack{
		Generator: tmplService.NewGeneratorService(db),
		Engine:    engine,
		Waitlist:  waitlist,
	}
}

// PublicBookingRoutes: listing sesi + waiting list + webhook pembayaran.
// Tanpa auth — identitas waiting list cukup email.
func PublicBookingRoutes(public fiber.Router, db *gorm.DB) {
	stack := newBookingStack(db)

	instancePublic := instanceController.NewSessionInstancePublicController(db, stack.Generator)
	public.Get("/sessions", instancePublic.ListPublicSessions)

	waitlist := wlController.NewWaitingListController(db, stack.Waitlist)
	public.Post("/waiting-list", middlewares.WaitlistRateLimiter(), waitlist.Join)
	public.Get("/waiting-list/check", waitlist.Check)

	webhook := &paymentController.PaymentWebhookController{DB: db}
	public.Post("/payments/webhook", webhook.HandleNotification)
}

// UserBookingRoutes: lifecycle booking milik user login.
func UserBookingRoutes(user fiber.Router, db *gorm.DB) {
	stack := newBookingStack(db)

	bookings := bookingController.NewBookingUserController(db, stack.Engine)
	user.Post("/bookings", bookings.Create)
	user.Get("/bookings", bookings.ListMine)
	user.Get("/bookings/:id", bookings.GetByID)
	user.Delete("/bookings/:id", bookings.Cancel)
}

// AdminBookingRoutes: CRUD template + operasi occurrence + operasi booking admin.
func AdminBookingRoutes(admin fiber.Router, db *gorm.DB) {
	stack := newBookingStack(db)

	templates := tmplController.NewSessionTemplateController(db, stack.Generator, stack.Engine)
	admin.Post("/session-templates", templates.Create)
	admin.Get("/session-templates", templates.List)
	admin.Get("/session-templates/:id", templates.GetByID)
	admin.Patch("/session-templates/:id", templates.Patch)
	admin.Delete("/session-templates/:id", templates.Delete)
	admin.Post("/session-templates/:id/generate", templates.Generate)

	instances := instanceController.NewSessionInstanceAdminController(db, stack.Engine)
	admin.Get("/session-instances", instances.List)
	admin.Delete("/session-instances/:id", instances.Cancel)

	bookings := bookingController.NewBookingAdminController(db, stack.Engine)
	admin.Get("/session-instances/:id/bookings", bookings.ListByInstance)
	admin.Post("/bookings/:id/move", bookings.Move)
	admin.Post("/bookings/:id/check-in", bookings.CheckIn)
	admin.Delete("/bookings/:id", bookings.Cancel)

	waitlist := wlController.NewWaitingListController(db, stack.Waitlist)
	admin.Get("/session-instances/:id/waiting-list", waitlist.ListByInstance)
}
