// Package router registers the HTTP routes.  Routes are grouped by
// audience: public (health, auth, read-only catalogs), customer role
// and mechanic role.  JWT and role middleware are applied per group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/avakarimi/mechanic-shop-api/internal/handler"
	"github.com/avakarimi/mechanic-shop-api/internal/middleware"
	"github.com/avakarimi/mechanic-shop-api/internal/utils"
)

// RegisterPublic wires the unauthenticated surface: the health check,
// the auth endpoints and the cached read-only catalogs.  strictLimit
// is an extra, tighter rate-limit bucket applied to mechanic
// registration; cacheMW is the Redis response cache applied to the
// catalog reads.
func RegisterPublic(e *echo.Echo, a *handler.AuthHandler, m *handler.MechanicHandler, inv *handler.InventoryHandler, cacheMW, strictLimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/customer/register", a.RegisterCustomer)
	g.POST("/customer/login", a.LoginCustomer)
	g.POST("/mechanic/register", a.RegisterMechanic, strictLimit)
	g.POST("/mechanic/login", a.LoginMechanic)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	// Read-only catalogs sit behind the response cache.
	e.GET("/v1/mechanics", m.List, cacheMW)
	e.GET("/v1/mechanics/:id", m.Get, cacheMW)
	e.GET("/v1/inventory", inv.List, cacheMW)
	e.GET("/v1/inventory/:id", inv.Get, cacheMW)
}

// RegisterCustomer wires the customer-role routes: profile management
// and the customer side of the ticket lifecycle.
func RegisterCustomer(e *echo.Echo, jwtSecret string, a *handler.AuthHandler, cu *handler.CustomerHandler, t *handler.TicketHandler) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	// /v1/me serves both roles; role dispatch happens in the handler.
	g.GET("/me", a.Me)

	customer := g.Group("", middleware.RequireRole(utils.RoleCustomer))
	customer.PUT("/customers/me", cu.UpdateMe)
	customer.DELETE("/customers/me", cu.DeleteMe)
	customer.POST("/tickets", t.Create)
	customer.GET("/my-tickets", t.MyTickets)
	customer.GET("/tickets/:id", t.GetOwn)
}

// RegisterMechanic wires the mechanic-role routes: customer directory,
// mechanic CRUD, inventory management and the ticket workflow.
func RegisterMechanic(e *echo.Echo, jwtSecret string, cu *handler.CustomerHandler, m *handler.MechanicHandler, inv *handler.InventoryHandler, t *handler.TicketHandler) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(utils.RoleMechanic))

	g.GET("/customers", cu.List)
	g.GET("/customers/:id", cu.Get)

	g.PUT("/mechanics/me", m.UpdateMe)
	g.PUT("/mechanics/:id", m.Update)
	g.DELETE("/mechanics/:id", m.Delete)

	g.POST("/inventory", inv.Create)
	g.GET("/inventory/low-stock", inv.ListLowStock)
	g.PUT("/inventory/:id", inv.Update)
	g.POST("/inventory/:id/archive", inv.Archive)
	g.DELETE("/inventory/:id", inv.Delete)

	g.GET("/tickets", t.List)
	g.PUT("/tickets/:id", t.Update)
	g.DELETE("/tickets/:id", t.Delete)
	g.POST("/tickets/:id/mechanics", t.AssignMechanic)
	g.DELETE("/tickets/:id/mechanics/:mechanicID", t.RemoveMechanic)
	g.POST("/tickets/:id/parts", t.AttachPart)
	g.DELETE("/tickets/:id/parts/:partID", t.DetachPart)
}
