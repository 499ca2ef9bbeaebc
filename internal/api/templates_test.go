/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/friendsincode/hugin_playout/internal/catalog"
	"github.com/friendsincode/hugin_playout/internal/db"
	"github.com/friendsincode/hugin_playout/internal/models"
	"github.com/friendsincode/hugin_playout/internal/schedule"
	"github.com/friendsincode/hugin_playout/internal/scheduler"
)

func testRouter(t *testing.T) (chi.Router, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zerolog.Nop()
	catalogSvc := catalog.NewService(conn, logger)
	scheduleSvc := schedule.NewService(conn, logger)
	schedulerSvc := scheduler.New(conn, catalogSvc, scheduleSvc, scheduler.Options{}, logger)
	a := New(conn, catalogSvc, scheduleSvc, schedulerSvc, logger)

	router := chi.NewRouter()
	a.Routes(router)
	return router, conn
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v body=%s", err, rr.Body.String())
	}
}

func TestFillFlow(t *testing.T) {
	router, conn := testRouter(t)

	// Channel.
	rr := doJSON(t, router, "POST", "/api/v1/channels/", map[string]any{"name": "KHGN"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create channel: %d %s", rr.Code, rr.Body.String())
	}
	var channel models.Channel
	decodeBody(t, rr, &channel)

	// Catalog via manifest import.
	manifest := `{"items": [
		{"title": "Promo 30", "file_path": "p30.mp4", "duration_seconds": 30, "duration_category": "spots"},
		{"title": "Promo 45", "file_path": "p45.mp4", "duration_seconds": 45, "duration_category": "spots"}
	]}`
	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/channels/%s/catalog/import", channel.ID), strings.NewReader(manifest))
	importRR := httptest.NewRecorder()
	router.ServeHTTP(importRR, req)
	if importRR.Code != http.StatusOK {
		t.Fatalf("import: %d %s", importRR.Code, importRR.Body.String())
	}

	// Rotation.
	rr = doJSON(t, router, "POST", fmt.Sprintf("/api/v1/channels/%s/rotations/", channel.ID), map[string]any{
		"name":     "Promos",
		"sequence": []string{"spots"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create rotation: %d %s", rr.Code, rr.Body.String())
	}
	var rotation models.RotationConfig
	decodeBody(t, rr, &rotation)

	// Template with one fixed anchor.
	rr = doJSON(t, router, "POST", "/api/v1/templates/", map[string]any{
		"channel_id": channel.ID,
		"name":       "Weekday",
		"topology":   "daily",
		"items": []map[string]any{{
			"title":            "Evening News",
			"start_time":       "5:00:00 pm",
			"duration_seconds": 1800,
			"source":           "fixed",
		}},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create template: %d %s", rr.Code, rr.Body.String())
	}
	var tmpl models.Template
	decodeBody(t, rr, &tmpl)

	// Gap preview: two free intervals around the anchor.
	rr = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/templates/%s/gaps", tmpl.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("gaps: %d %s", rr.Code, rr.Body.String())
	}
	var gapsResp struct {
		Gaps []gapResponse `json:"gaps"`
	}
	decodeBody(t, rr, &gapsResp)
	if len(gapsResp.Gaps) != 2 {
		t.Fatalf("gaps = %d, want 2", len(gapsResp.Gaps))
	}

	// Fill.
	rr = doJSON(t, router, "POST", fmt.Sprintf("/api/v1/templates/%s/fill", tmpl.ID), map[string]any{
		"rotation_id": rotation.ID,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("fill: %d %s", rr.Code, rr.Body.String())
	}
	var fillResp struct {
		Report struct {
			ItemsAdded    int     `json:"items_added"`
			SecondsFilled float64 `json:"seconds_filled"`
		} `json:"report"`
	}
	decodeBody(t, rr, &fillResp)
	if fillResp.Report.ItemsAdded == 0 {
		t.Fatal("fill placed nothing")
	}

	// Placements were persisted.
	var count int64
	if err := conn.Model(&models.TemplateItem{}).
		Where("template_id = ? AND source = ?", tmpl.ID, models.ItemSourceFill).
		Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if int(count) != fillResp.Report.ItemsAdded {
		t.Errorf("persisted %d items, report says %d", count, fillResp.Report.ItemsAdded)
	}

	// Fill history.
	rr = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/templates/%s/fill-runs", tmpl.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("fill-runs: %d", rr.Code)
	}
	var runsResp struct {
		Runs []models.FillRun `json:"runs"`
	}
	decodeBody(t, rr, &runsResp)
	if len(runsResp.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runsResp.Runs))
	}

	// CSV export includes the anchor and the fills.
	rr = doJSON(t, router, "GET", fmt.Sprintf("/api/v1/templates/%s/export/daily-log.csv", tmpl.ID), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Evening News") {
		t.Error("export missing anchor row")
	}
}

func TestTemplateCreateRejectsMalformedTime(t *testing.T) {
	router, _ := testRouter(t)

	rr := doJSON(t, router, "POST", "/api/v1/channels/", map[string]any{"name": "KHGN"})
	var channel models.Channel
	decodeBody(t, rr, &channel)

	rr = doJSON(t, router, "POST", "/api/v1/templates/", map[string]any{
		"channel_id": channel.ID,
		"name":       "Broken",
		"topology":   "daily",
		"items": []map[string]any{{
			"title":            "Bad",
			"start_time":       "25:99:00",
			"duration_seconds": 60,
			"source":           "fixed",
		}},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "malformed_time") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestFillUnknownTemplate(t *testing.T) {
	router, _ := testRouter(t)

	rr := doJSON(t, router, "POST", "/api/v1/templates/no-such-id/fill", map[string]any{
		"rotation_id": "also-missing",
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rr.Code)
	}
}
