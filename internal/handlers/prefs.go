package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/lp-docdb/internal/store"
	"github.com/localnerve/lp-docdb/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
)

// PrefsHandler serves read-only preference routes
type PrefsHandler struct {
	DB *mongo.Database
}

// GetPreferences handles GET /api/prefs/:email
// @Summary Get a user's current preferences
// @Description All current (key, value) pairs held by the user, sorted by key
// @Tags Prefs
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /prefs/{email} [get]
func (h *PrefsHandler) GetPreferences(c *fiber.Ctx) error {
	email := c.Params("email")

	user, err := store.UserByEmail(c.Context(), h.DB, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("User '%s' not found", email))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPreferences")
	}

	prefs, err := store.PreferencesForUser(c.Context(), h.DB, user.ID)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getPreferences")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"email":       user.Email,
		"preferences": prefs,
	})
}

// GetHistory handles GET /api/prefs/:email/history/:key
// @Summary Get a user's preference transition history
// @Description Most recent transitions for (user, key), newest first
// @Tags Prefs
// @Produce json
// @Param email path string true "User email"
// @Param key path string true "Preference key"
// @Param limit query int false "Maximum transitions to return"
// @Success 200 {array} models.UserPreferenceEvent
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /prefs/{email}/history/{key} [get]
func (h *PrefsHandler) GetHistory(c *fiber.Ctx) error {
	email := c.Params("email")
	key := c.Params("key")

	user, err := store.UserByEmail(c.Context(), h.DB, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("User '%s' not found", email))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getHistory")
	}

	limit := parseInt64(c.Query("limit"), 20)
	events, err := store.PreferenceHistory(c.Context(), h.DB, user.ID, key, limit)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getHistory")
	}

	if len(events) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusOK).JSON(events)
}
