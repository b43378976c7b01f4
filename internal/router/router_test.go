package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-health-monitor/internal/app"
	"pet-health-monitor/internal/config"
	"pet-health-monitor/internal/platform/logger"
)

const (
	adminID  = "user-1"
	farmerID = "user-2"
	viewerID = "user-5"

	sheepID = "animal-user-2-0"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppName:          "pet-health-monitor-test",
		TickInterval:     10 * time.Second,
		FreshWindow:      60 * time.Second,
		AlertProbability: 0,
		SeedMockData:     true,
		RNGSeed:          42,
		SyncDelay:        time.Hour,
		SyncSuccessRate:  0.9,
		SyncTimeout:      time.Hour,
		SyncMaxAttempts:  3,
	}
	a, err := app.New(context.Background(), app.Options{
		Config: cfg,
		Logger: logger.NewNop(),
		// las completions de sync quedan pendientes; no corren goroutines en el test
		AfterFunc: func(time.Duration, func()) {},
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	ts := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = a.Close()
	})
	return ts
}

func TestHTTP_EndToEnd_MonitoringFlow(t *testing.T) {
	ts := newServer(t)

	// 1) Liveness sin auth
	{
		st, _, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected 200 ok, got %d body=%s", st, string(body))
		}
	}

	// 2) Sin usuario => 401
	{
		st, _, _ := doReq(t, ts.URL, "GET", "/animals/"+sheepID+"/health", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without claims, got %d", st)
		}
	}

	// 3) Estado compuesto del animal sembrado
	{
		st, _, body := doReq(t, ts.URL, "GET", "/animals/"+sheepID+"/health", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 status, got %d body=%s", st, string(body))
		}
		var resp struct {
			AnimalName  string   `json:"animal_name"`
			Species     string   `json:"species"`
			HealthScore float64  `json:"health_score"`
			HeartRate   *float64 `json:"heart_rate"`
			Mood        string   `json:"mood"`
		}
		mustDecode(t, body, &resp)
		if resp.AnimalName != "Sheep001" || resp.Species != "sheep" {
			t.Fatalf("unexpected animal: %+v", resp)
		}
		if resp.HealthScore <= 0 || resp.HeartRate == nil || resp.Mood == "" {
			t.Fatalf("expected seeded telemetry, got %+v", resp)
		}
	}

	// 4) Animal inexistente => 404
	{
		st, _, _ := doReq(t, ts.URL, "GET", "/animals/nope/health", adminID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 unknown animal, got %d", st)
		}
	}

	// 5) Lecturas de la última hora: una por métrica generada
	{
		st, _, body := doReq(t, ts.URL, "GET", "/animals/"+sheepID+"/readings?hours=1", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 readings, got %d body=%s", st, string(body))
		}
		var items []map[string]any
		mustDecode(t, body, &items)
		if len(items) != 5 {
			t.Fatalf("expected 5 seeded readings, got %d", len(items))
		}
	}

	// 6) Lectura manual fuera de rango => alerta de ritmo cardíaco
	var alertID string
	{
		st, _, body := doReq(t, ts.URL, "POST", "/animals/"+sheepID+"/readings", farmerID, map[string]any{
			"heart_rate": 300,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 record sample, got %d body=%s", st, string(body))
		}
		var resp struct {
			Alerts []struct {
				ID       string `json:"id"`
				Category string `json:"category"`
				Severity string `json:"severity"`
			} `json:"alerts"`
		}
		mustDecode(t, body, &resp)
		for _, a := range resp.Alerts {
			if a.Category == "heart_rate" {
				if a.Severity != "high" {
					t.Fatalf("expected high severity, got %s", a.Severity)
				}
				alertID = a.ID
			}
		}
		if alertID == "" {
			t.Fatalf("expected heart_rate alert, body=%s", string(body))
		}
	}

	// 7) Marcar leída
	{
		st, _, body := doReq(t, ts.URL, "POST", "/alerts/"+alertID+"/read", farmerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 mark read, got %d body=%s", st, string(body))
		}
		var resp struct {
			Read bool `json:"read"`
		}
		mustDecode(t, body, &resp)
		if !resp.Read {
			t.Fatalf("expected alert read")
		}
	}

	// 8) Viewer no puede cargar lecturas
	{
		st, _, _ := doReq(t, ts.URL, "POST", "/animals/"+sheepID+"/readings", viewerID, map[string]any{
			"heart_rate": 70,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for viewer, got %d", st)
		}
	}

	// 9) Disparar sync => 202 pending
	{
		st, _, body := doReq(t, ts.URL, "POST", "/users/"+farmerID+"/syncs", farmerID, map[string]any{
			"sync_type": "full",
		})
		if st != http.StatusAccepted {
			t.Fatalf("expected 202 trigger sync, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status    string `json:"status"`
			Direction string `json:"sync_direction"`
		}
		mustDecode(t, body, &resp)
		if resp.Status != "pending" || resp.Direction != "upload" {
			t.Fatalf("unexpected sync: %+v", resp)
		}
	}

	// 10) Stats del sistema
	{
		st, _, body := doReq(t, ts.URL, "GET", "/stats", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 stats, got %d body=%s", st, string(body))
		}
		var resp struct {
			TotalUsers         int `json:"total_users"`
			TotalAnimals       int `json:"total_animals"`
			TotalOrganizations int `json:"total_organizations"`
		}
		mustDecode(t, body, &resp)
		if resp.TotalUsers != 5 || resp.TotalAnimals != 45 || resp.TotalOrganizations != 2 {
			t.Fatalf("unexpected stats: %+v", resp)
		}
	}

	// 11) Recomendación de tips
	{
		st, _, body := doReq(t, ts.URL, "GET", "/animals/"+sheepID+"/tips", farmerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 tips, got %d body=%s", st, string(body))
		}
	}

	// 12) Reporte mensual
	{
		st, _, body := doReq(t, ts.URL, "POST", "/users/"+farmerID+"/reports/monthly", farmerID, map[string]any{})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 monthly report, got %d body=%s", st, string(body))
		}
		var resp struct {
			Summary struct {
				AnimalCount int `json:"animal_count"`
			} `json:"summary"`
		}
		mustDecode(t, body, &resp)
		if resp.Summary.AnimalCount != 20 {
			t.Fatalf("expected 20 animals in report, got %d", resp.Summary.AnimalCount)
		}
	}

	// 13) Pasada manual del simulador (admin) y métricas
	{
		st, _, body := doReq(t, ts.URL, "POST", "/simulator/tick", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 tick, got %d body=%s", st, string(body))
		}
		st, _, body = doReq(t, ts.URL, "GET", "/metrics", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), "simulator_ticks_total 1") {
			t.Fatalf("expected tick counter in metrics, got %d", st)
		}
	}

	// 14) Borrar el animal limpia su telemetría
	{
		st, _, body := doReq(t, ts.URL, "DELETE", "/animals/"+sheepID, farmerID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete animal, got %d body=%s", st, string(body))
		}
		st, _, _ = doReq(t, ts.URL, "GET", "/animals/"+sheepID+"/health", adminID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
}

func TestHTTP_Export_Formats(t *testing.T) {
	ts := newServer(t)

	{
		st, h, body := doReq(t, ts.URL, "GET", "/export?format=csv", adminID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 csv export, got %d", st)
		}
		if !strings.HasPrefix(h.Get("Content-Type"), "text/csv") {
			t.Fatalf("unexpected content type %q", h.Get("Content-Type"))
		}
		if !strings.HasPrefix(string(body), "Type,ID,Name,Date") {
			t.Fatalf("unexpected csv header: %.40s", string(body))
		}
	}
	{
		st, _, body := doReq(t, ts.URL, "GET", "/export", viewerID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 json export for viewer, got %d", st)
		}
		var resp struct {
			Users   []any `json:"users"`
			Animals []any `json:"animals"`
		}
		mustDecode(t, body, &resp)
		if len(resp.Users) != 5 || len(resp.Animals) != 45 {
			t.Fatalf("unexpected export sizes users=%d animals=%d", len(resp.Users), len(resp.Animals))
		}
	}
	{
		st, _, _ := doReq(t, ts.URL, "GET", "/export?format=xml", adminID, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 unknown format, got %d", st)
		}
	}
}

func TestHTTP_UsersManage_RequiresAdmin(t *testing.T) {
	ts := newServer(t)

	st, _, _ := doReq(t, ts.URL, "POST", "/tips", farmerID, map[string]any{
		"type":    "care_tip",
		"content": "Brush weekly",
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 tip create by user, got %d", st)
	}

	st, _, body := doReq(t, ts.URL, "POST", "/tips", adminID, map[string]any{
		"type":    "care_tip",
		"content": "Brush weekly",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 tip create by admin, got %d body=%s", st, string(body))
	}
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json decode: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, http.Header, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, res.Header, respBody
}
