package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/techcompass/tech-compass/tests/helpers"
)

// TestE2EWithFullStack drives the containerized stack end to end: database,
// optional auth server and the API image built from the Dockerfile.
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx := context.Background()

	tc, err := helpers.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	apiHost, _ := tc.APIContainer.Host(ctx)
	apiPort, _ := tc.APIContainer.MappedPort(ctx, "3000")
	baseURL := fmt.Sprintf("http://%s:%s", apiHost, apiPort.Port())

	// Wait a bit for everything to stabilize
	time.Sleep(5 * time.Second)

	t.Run("HealthEndpoint", func(t *testing.T) {
		testHealthEndpoint(t, baseURL)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("PublicAPIAccess", func(t *testing.T) {
		testPublicAPIAccess(t, baseURL)
	})

	t.Run("AdminCatalogFlow", func(t *testing.T) {
		testAdminCatalogFlow(t, baseURL)
	})
}

func testHealthEndpoint(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		t.Fatalf("Failed to get health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200 for health, got %d. Body: %s", resp.StatusCode, body)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Health response is not valid JSON: %v", err)
	}
	if result["status"] != "healthy" {
		t.Errorf("Health check failed: %+v", result)
	}
	t.Logf("Health check passed: %+v", result)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for metrics, got %d. Body: %s", resp.StatusCode, body)
	}

	t.Logf("Metrics endpoint working, found %d bytes of metrics", len(body))
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for Swagger UI, got %d", resp.StatusCode)
	}
}

func testPublicAPIAccess(t *testing.T, baseURL string) {
	// Catalog reads are public.
	resp, err := http.Get(baseURL + "/api/solutions/")
	if err != nil {
		t.Fatalf("Failed to access public API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, body)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Errorf("Response is not valid JSON: %v", err)
	}

	// Unknown routes return the JSON 404 envelope.
	resp2, err := http.Get(baseURL + "/api/no-such-route")
	if err != nil {
		t.Fatalf("Failed to access unknown route: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != 404 {
		t.Errorf("Expected status 404, got %d", resp2.StatusCode)
	}
	var notFound map[string]interface{}
	if err := json.NewDecoder(resp2.Body).Decode(&notFound); err != nil {
		t.Errorf("404 response is not valid JSON: %v", err)
	}

	// Writes without a token are challenged.
	resp3, err := http.Post(baseURL+"/api/solutions/", "application/json", strings.NewReader(`{"name":"nope"}`))
	if err != nil {
		t.Fatalf("Failed to post without token: %v", err)
	}
	defer resp3.Body.Close()

	if resp3.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp3.StatusCode)
	}
	if resp3.Header.Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("Expected a WWW-Authenticate: Bearer challenge, got %q", resp3.Header.Get("WWW-Authenticate"))
	}
}

// testAdminCatalogFlow logs in as the bootstrap admin and runs a create/read
// round trip through the running container.
func testAdminCatalogFlow(t *testing.T, baseURL string) {
	token := helpers.LoginLocal(t, baseURL, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD"))

	payload := `{"name":"E2E Widget","description":"end to end probe","category":"E2E","tags":["e2e","probe"]}`
	req := helpers.AuthorizedRequest(t, http.MethodPost, baseURL+"/api/solutions/", token, strings.NewReader(payload))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to create solution: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, body)
	}

	resp2, err := http.Get(baseURL + "/api/solutions/e2e-widget")
	if err != nil {
		t.Fatalf("Failed to read solution back: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp2.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp2.Body).Decode(&result); err != nil {
		t.Fatalf("Solution response is not valid JSON: %v", err)
	}
	data, _ := result["data"].(map[string]interface{})
	if data["name"] != "E2E Widget" {
		t.Errorf("Unexpected solution body: %+v", result)
	}

	// The change shows up in the audit trail.
	req = helpers.AuthorizedRequest(t, http.MethodGet, baseURL+"/api/history?object_type=solution&object_name=E2E+Widget", token, nil)
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to query history: %v", err)
	}
	defer resp3.Body.Close()

	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 from history, got %d", resp3.StatusCode)
	}
	var history map[string]interface{}
	if err := json.NewDecoder(resp3.Body).Decode(&history); err != nil {
		t.Fatalf("History response is not valid JSON: %v", err)
	}
	if total, _ := history["total"].(float64); total < 1 {
		t.Errorf("Expected at least one history record, got %v", history["total"])
	}
}
