package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawmart/api/internal/utils"
)

const (
	testAppBinary         = "./pawmart_test_app"
	testAppPort           = "8089"
	testServiceApiPortApi = "8091"
	testServiceApiPortBg  = "8092"
	testAppURL            = "http://localhost:" + testAppPort
	testServiceApiURL     = "http://localhost:" + testServiceApiPortApi
	testDbName            = "pawmart_integration_test"
	startupTimeout        = 15 * time.Second
	healthEndpoint        = testAppURL + "/health"
)

// skipReason is set when the environment cannot run the application end to end.
var skipReason string

func requireApp(t *testing.T) {
	t.Helper()
	if skipReason != "" {
		t.Skip(skipReason)
	}
}

// TestMain builds the binary and runs it as an API process and a worker process
// against a throwaway database.
func TestMain(m *testing.M) {
	mongoURI := utils.GetTestMongoURI()
	redisAddr := os.Getenv("REDIS_ADDR")
	if mongoURI == "" || redisAddr == "" {
		skipReason = "MONGO_URI and REDIS_ADDR are required for integration tests"
		m.Run()
		return
	}

	defer func() {
		log.Println("Integration Test Teardown: Cleaning up test binary...")
		_ = os.Remove(testAppBinary)
	}()

	log.Println("Integration Test Setup: Building application...")
	buildCmd := exec.Command("go", "build", "-o", testAppBinary, ".")
	if buildOutput, err := buildCmd.CombinedOutput(); err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(buildOutput))
		os.Exit(1)
	}

	defer dropTestDatabase(mongoURI)

	commonEnv := append(os.Environ(),
		"MONGO_DB_NAME="+testDbName,
		"GIN_MODE=release",
		"MOCK_SERVICES=true",
		"RATE_LIMIT_BUCKET_SIZE=200",
		"RATE_LIMIT_REFILL_RATE=200",
		"SMTP_FROM_ADDRESS=test@example.com",
	)

	apiCmd := exec.Command(testAppBinary, "-m", "api")
	apiCmd.Env = append(commonEnv, "API_PORT="+testAppPort, "SERVICE_API_PORT="+testServiceApiPortApi)
	apiCmd.Stderr = os.Stderr
	apiCmd.Stdout = os.Stdout

	workerCmd := exec.Command(testAppBinary, "-m", "worker")
	workerCmd.Env = append(commonEnv, "SERVICE_API_PORT="+testServiceApiPortBg)
	workerCmd.Stderr = os.Stderr
	workerCmd.Stdout = os.Stdout

	log.Println("Integration Test Setup: Starting API and worker processes...")
	if err := apiCmd.Start(); err != nil {
		log.Printf("Failed to start API process: %v", err)
		os.Exit(1)
	}
	if err := workerCmd.Start(); err != nil {
		_ = apiCmd.Process.Kill()
		log.Printf("Failed to start worker process: %v", err)
		os.Exit(1)
	}

	defer func() {
		log.Println("Integration Test Teardown: Shutting down application processes...")
		stopProcess(workerCmd)
		stopProcess(apiCmd)
	}()

	if !waitForHealthy() {
		log.Printf("Application failed to start within %v", startupTimeout)
		return
	}
	// The worker has no HTTP surface of its own; give it a moment to register with Redis.
	time.Sleep(2 * time.Second)

	exitCode := m.Run()
	log.Printf("Integration Test Teardown: Tests finished with exit code %d.", exitCode)
}

func stopProcess(cmd *exec.Cmd) {
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = cmd.Process.Kill()
		return
	}
	_, _ = cmd.Process.Wait()
}

func waitForHealthy() bool {
	startTime := time.Now()
	for time.Since(startTime) < startupTimeout {
		resp, err := http.Get(healthEndpoint)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func dropTestDatabase(mongoURI string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Printf("Integration Test Teardown: cannot connect to drop %s: %v", testDbName, err)
		return
	}
	defer client.Disconnect(ctx)
	_ = client.Database(testDbName).Drop(ctx)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func doJSON(t *testing.T, method, target string, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, testAppURL+target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Request to %s should not fail", target)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func listingInput(name, category string, price float64, email string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"category":    category,
		"price":       price,
		"location":    "NYC",
		"description": "integration listing",
		"image":       "http://x/img.png",
		"email":       email,
		"date":        "2024-01-01",
	}
}

func getTestEmail(t *testing.T, kind, recipient string) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"method":"getTestEmail","arguments":[%q,%q]}`, kind, recipient)

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Post(testServiceApiURL+"/api", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		var out struct {
			Success bool                   `json:"success"`
			Data    map[string]interface{} `json:"data"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK && out.Success {
			return out.Data
		}
	}
	t.Fatalf("no %s email for %s arrived", kind, recipient)
	return nil
}

func TestIntegration_Root(t *testing.T) {
	requireApp(t)
	status, resp := doJSON(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, "PawMart Server is Running!", resp.Message)
}

func TestIntegration_ListingLifecycle(t *testing.T) {
	requireApp(t)
	owner := fmt.Sprintf("owner-%d@example.com", time.Now().UnixNano())

	status, created := doJSON(t, http.MethodPost, "/listings", listingInput("  Dog Food ", "Food", 15, owner))
	require.Equal(t, http.StatusCreated, status, created.Message)
	assert.Equal(t, "Listing created successfully", created.Message)

	var listing struct {
		ID    string  `json:"_id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &listing))
	assert.Equal(t, "Dog Food", listing.Name)
	assert.Equal(t, 15.0, listing.Price)

	status, fetched := doJSON(t, http.MethodGet, "/listings/"+listing.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, fetched.Success)

	status, updated := doJSON(t, http.MethodPut, "/listings/"+listing.ID, map[string]interface{}{"price": 12})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Listing updated successfully", updated.Message)

	status, mine := doJSON(t, http.MethodGet, "/listings/user/"+url.PathEscape(owner), nil)
	require.Equal(t, http.StatusOK, status)
	var owned []map[string]interface{}
	require.NoError(t, json.Unmarshal(mine.Data, &owned))
	require.Len(t, owned, 1)
	assert.Equal(t, 12.0, owned[0]["price"])

	status, _ = doJSON(t, http.MethodDelete, "/listings/"+listing.ID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, again := doJSON(t, http.MethodDelete, "/listings/"+listing.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Listing not found", again.Message)
}

func TestIntegration_ListingErrors(t *testing.T) {
	requireApp(t)

	status, resp := doJSON(t, http.MethodGet, "/listings/not-a-valid-id", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid listing ID", resp.Message)

	status, resp = doJSON(t, http.MethodGet, "/listings/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = doJSON(t, http.MethodPost, "/listings", listingInput("Rex", "Pets", 10, "a@b.com"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Pets must be free for adoption (price: 0)", resp.Message)
}

func TestIntegration_RecentListings(t *testing.T) {
	requireApp(t)
	for i := 0; i < 7; i++ {
		status, _ := doJSON(t, http.MethodPost, "/listings", listingInput(fmt.Sprintf("Toy %d", i), "Accessories", 3, "toys@example.com"))
		require.Equal(t, http.StatusCreated, status)
	}

	status, resp := doJSON(t, http.MethodGet, "/listings/recent", nil)
	require.Equal(t, http.StatusOK, status)
	var recent []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &recent))
	assert.Len(t, recent, 6)
	assert.Equal(t, "Toy 6", recent[0]["name"])
}

func TestIntegration_OrderNotifiesBuyerAndOwner(t *testing.T) {
	requireApp(t)
	stamp := time.Now().UnixNano()
	owner := fmt.Sprintf("seller-%d@example.com", stamp)
	buyer := fmt.Sprintf("buyer-%d@example.com", stamp)

	status, created := doJSON(t, http.MethodPost, "/listings", listingInput("Cat Food", "Food", 9, owner))
	require.Equal(t, http.StatusCreated, status)
	var listing struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &listing))

	status, pet := doJSON(t, http.MethodPost, "/orders", map[string]interface{}{
		"productId": listing.ID, "productName": "Rex", "buyerName": "Jo", "email": buyer,
		"quantity": 2, "price": 0, "category": "Pets", "address": "1 Main", "phone": "555", "date": "2024-01-02",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Pet adoption quantity must be 1", pet.Message)

	status, placed := doJSON(t, http.MethodPost, "/orders", map[string]interface{}{
		"productId": listing.ID, "productName": "Cat Food", "buyerName": "Jo", "email": buyer,
		"quantity": 2, "price": 9, "address": "1 Main", "phone": "555", "date": "2024-01-02",
	})
	require.Equal(t, http.StatusCreated, status, placed.Message)
	assert.Equal(t, "Order placed successfully", placed.Message)

	buyerMail := getTestEmail(t, "order_received", buyer)
	assert.Equal(t, "Order received: Cat Food", buyerMail["subject"])
	ownerMail := getTestEmail(t, "new_order", owner)
	assert.Equal(t, "New order for Cat Food", ownerMail["subject"])

	status, orders := doJSON(t, http.MethodGet, "/orders/user/"+url.PathEscape(buyer), nil)
	require.Equal(t, http.StatusOK, status)
	var mine []map[string]interface{}
	require.NoError(t, json.Unmarshal(orders.Data, &mine))
	assert.Len(t, mine, 1)
}
