package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func pageProbeApp() *fiber.App {
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		page, size := parsePage(c)
		return c.JSON(fiber.Map{"page": page, "size": size})
	})
	return app
}

func probePage(t *testing.T, app *fiber.App, url string) (int64, int64) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Page int64 `json:"page"`
		Size int64 `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return body.Page, body.Size
}

func TestParsePageDefaults(t *testing.T) {
	app := pageProbeApp()

	page, size := probePage(t, app, "/probe")
	if page != 1 || size != defaultPageSize {
		t.Errorf("defaults: got page=%d size=%d", page, size)
	}
}

func TestParsePageExplicit(t *testing.T) {
	app := pageProbeApp()

	page, size := probePage(t, app, "/probe?page=3&size=15")
	if page != 3 || size != 15 {
		t.Errorf("explicit: got page=%d size=%d", page, size)
	}
}

func TestParsePageClamping(t *testing.T) {
	app := pageProbeApp()

	page, size := probePage(t, app, "/probe?page=0&size=9999")
	if page != 1 {
		t.Errorf("page 0 should clamp to 1, got %d", page)
	}
	if size != maxPageSize {
		t.Errorf("oversize should clamp to %d, got %d", maxPageSize, size)
	}

	page, size = probePage(t, app, "/probe?page=junk&size=-4")
	if page != 1 || size != defaultPageSize {
		t.Errorf("junk input: got page=%d size=%d", page, size)
	}
}
