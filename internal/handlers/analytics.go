// analytics.go
//
// Document database setup, seed, and analytics kit for the learning platform schemas
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lp-docdb.
// lp-docdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lp-docdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lp-docdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/lp-docdb/internal/pipeline"
	"github.com/localnerve/lp-docdb/internal/store"
	"github.com/localnerve/lp-docdb/internal/utils"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsHandler serves the aggregation reports over the learning schema
type AnalyticsHandler struct {
	DB *mongo.Database
}

// GetEngagement handles GET /api/analytics/engagement
// @Summary Get per-module engagement report
// @Description Per-module lesson/step/learner counts with completion rates, sorted by rate
// @Tags Analytics
// @Produce json
// @Success 200 {object} pipeline.EngagementReport
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /analytics/engagement [get]
func (h *AnalyticsHandler) GetEngagement(c *fiber.Ctx) error {
	report, err := pipeline.ModuleEngagementReport(c.Context(), h.DB)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getEngagement")
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

// GetTimeline handles GET /api/analytics/timeline/:email
// @Summary Get a learner's completion timeline
// @Description Daily completed-step counts with cumulative total and 3-day moving average
// @Tags Analytics
// @Produce json
// @Param email path string true "Learner email"
// @Success 200 {array} pipeline.TimelinePoint
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /analytics/timeline/{email} [get]
func (h *AnalyticsHandler) GetTimeline(c *fiber.Ctx) error {
	email := c.Params("email")

	points, err := pipeline.PersonTimeline(c.Context(), h.DB, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFoundResponse(c, fmt.Sprintf("Person '%s' not found", email))
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getTimeline")
	}

	if len(points) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusOK).JSON(points)
}
