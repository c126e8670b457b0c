package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/lp-docdb/internal/models"
	"github.com/localnerve/lp-docdb/internal/store"
	"github.com/localnerve/lp-docdb/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogHandler serves read-only catalog tree routes
type CatalogHandler struct {
	DB *mongo.Database
}

// GetModules handles GET /api/catalog/modules?prefix=&contains=&page=&size=
// @Summary List catalog modules
// @Description Paged module listing with optional case-insensitive prefix or substring filter
// @Tags Catalog
// @Produce json
// @Param prefix query string false "Case-insensitive name prefix"
// @Param contains query string false "Case-insensitive name substring"
// @Param page query int false "1-based page number"
// @Param size query int false "Page size, capped at 100"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /catalog/modules [get]
func (h *CatalogHandler) GetModules(c *fiber.Ctx) error {
	filter := bson.M{}
	if prefix := c.Query("prefix"); prefix != "" {
		filter = store.PrefixRegex("name", prefix)
	} else if contains := c.Query("contains"); contains != "" {
		filter = store.ContainsRegex("name", contains)
	}

	page, size := parsePage(c)
	q := store.Page(page, size)
	q.Sort = bson.D{{Key: "name", Value: 1}}

	modules, err := store.Modules(c.Context(), h.DB, filter, q)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getModules")
	}

	total, err := store.CountExact(c.Context(), h.DB, models.Module{}.CollectionName(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getModules")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"modules": modules,
		"total":   total,
		"page":    page,
		"size":    size,
	})
}

// GetModuleLessons handles GET /api/catalog/modules/:name/lessons
// @Summary List lessons of a module
// @Description Lessons of the named module, sorted by name
// @Tags Catalog
// @Produce json
// @Param name path string true "Module name"
// @Success 200 {array} models.Lesson
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /catalog/modules/{name}/lessons [get]
func (h *CatalogHandler) GetModuleLessons(c *fiber.Ctx) error {
	name := c.Params("name")

	module, err := store.ModuleByName(c.Context(), h.DB, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Module '%s' not found", name))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getModuleLessons")
	}

	lessons, err := store.LessonsForModule(c.Context(), h.DB, module.ID,
		store.QueryOptions{Sort: bson.D{{Key: "name", Value: 1}}})
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getModuleLessons")
	}

	if len(lessons) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusOK).JSON(lessons)
}
