package rest

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/guard"
)

// Route identifiers, "<METHOD> <path>".
const (
	RouteRegister       = "POST /auth/register"
	RouteLogin          = "POST /auth/login"
	RouteCheckStatus    = "GET /auth/check-status"
	RoutePrivate        = "GET /auth/private"
	RoutePrivate2       = "GET /auth/private2"
	RoutePrivate3       = "GET /auth/private3"
	RouteChangePassword = "PATCH /auth/password"
	RouteUpdateUser     = "PATCH /auth/users/:id"
	RoutePresence       = "GET /presence"
	RouteHealth         = "GET /health"
)

// RouteRoles lists the roles any of which admits a guarded route. Guarded
// routes missing here only need authentication.
var RouteRoles = map[string][]string{
	RoutePrivate2:   {common.RoleSuperUser, common.RoleAdmin},
	RoutePrivate3:   {common.RoleAdmin},
	RouteUpdateUser: {common.RoleAdmin},
	RoutePresence:   {common.RoleAdmin},
}

// Deps are the collaborators the HTTP boundary is built from.
type Deps struct {
	Users         UserService
	Authenticator Authenticator
	Presence      PresenceLister
	Logger        logging.Logger
}

// NewRouter builds the fiber application with every route registered.
func NewRouter(d Deps) *fiber.App {
	l := d.Logger.With("module", "http_server")

	app := fiber.New(fiber.Config{
		AppName:               "gophgate",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(l),
	})
	app.Use(requestLogger(l), securityHeaders)

	h := &Handler{users: d.Users, presence: d.Presence}
	az := guard.NewAuthorizer(RouteRoles)
	authn := authenticate(d.Authenticator)

	// guarded prepends authentication and the role check for route.
	guarded := func(route string, handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{authn, authorize(az, route), handler}
	}

	app.Get("/health", h.Health)

	a := app.Group("/auth")
	a.Post("/register", h.Register)
	a.Post("/login", h.Login)
	a.Get("/check-status", guarded(RouteCheckStatus, h.CheckStatus)...)
	a.Get("/private", guarded(RoutePrivate, h.Private)...)
	a.Get("/private2", guarded(RoutePrivate2, h.RoleProtected)...)
	a.Get("/private3", guarded(RoutePrivate3, h.RoleProtected)...)
	a.Patch("/password", guarded(RouteChangePassword, h.ChangePassword)...)
	a.Patch("/users/:id", guarded(RouteUpdateUser, h.UpdateUser)...)

	app.Get("/presence", guarded(RoutePresence, h.Presence)...)

	return app
}
