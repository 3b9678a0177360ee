package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account management requests.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers the user routes. authenticated runs on every route;
// admin is added for routes that manage other accounts.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authenticated fiber.Handler, admin fiber.Handler) {
	users := router.Group("/users")
	self := middleware.SelfOrAdmin("id")
	users.Get("/", authenticated, admin, h.HandleListUsers)
	users.Get("/:id", authenticated, self, h.HandleGetUser)
	users.Put("/:id", authenticated, admin, h.HandleUpdateUser)
	users.Put("/:id/profile", authenticated, self, h.HandleUpdateProfile)
	users.Delete("/:id", authenticated, admin, h.HandleDeleteUser)
}

// HandleListUsers lists every account.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers()
	if err != nil {
		return respondError(c, err, "Failed to fetch users")
	}
	return c.JSON(users)
}

// HandleGetUser returns one account.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	return c.JSON(user)
}

// HandleUpdateUser changes the name and role of an account.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req services.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.UpdateUser(c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Server error during user update")
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// HandleUpdateProfile changes the caller's display name and profile image.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.service.UpdateProfile(c.Params("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return c.JSON(user)
}

// HandleDeleteUser removes an account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete user")
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
