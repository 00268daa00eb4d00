package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/adapter/client"
	"github.com/wastefront/pricing-service/internal/adapter/handler"
	"github.com/wastefront/pricing-service/internal/adapter/storage"
	"github.com/wastefront/pricing-service/internal/core/event"
	"github.com/wastefront/pricing-service/internal/core/rules"
	"github.com/wastefront/pricing-service/internal/core/service"
)

type testEnv struct {
	app          *httptest.Server
	invoiceCalls *atomic.Int32
	invoiceFail  *atomic.Bool
	cleanup      func()
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	visitorAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": "ind-1", "type": "individual", "address": "1 Elm St", "city": "Springfield", "card_id": "c-1", "email": ""},
			{"id": "biz-1", "type": "business", "address": "9 Dock Rd", "city": "Springfield", "card_id": "c-2", "email": "billing@acme.test"},
			{"id": "oak-biz", "type": "business", "address": "5 Oak Ave", "city": "Oak City", "card_id": "c-3", "email": "oak@acme.test"},
			{"id": "oak-ind-1", "type": "individual", "address": "12 Maple Dr", "city": "Oak City", "card_id": "c-4", "email": ""},
			{"id": "oak-ind-2", "type": "individual", "address": "12 Maple Dr", "city": "Oak City", "card_id": "c-5", "email": ""}
		]`)
	}))

	var invoiceCalls atomic.Int32
	var invoiceFail atomic.Bool
	invoiceAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		invoiceCalls.Add(1)
		if invoiceFail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	visits := storage.NewMemoryVisitRepository()
	visitors := storage.NewMemoryVisitorRepository()
	exemptions := storage.NewMemoryExemptionRepository()

	engine := rules.NewEngine(rules.DefaultRules()...)
	engine.AddRule(rules.NewOakCityBusinessConstructionRule(exemptions))
	engine.AddRule(rules.NewOakCityHouseholdConstructionRule(exemptions))

	dispatcher := event.NewDispatcher(logger)
	dispatcher.Subscribe(service.NewInvoiceHandler(
		client.NewInvoiceAPIClient(invoiceAPI.URL, "tok", "ws"), logger).Handle)

	calculator := service.NewPriceCalculator(
		client.NewVisitorAPIClient(visitorAPI.URL, "tok", "ws", nil, logger),
		engine,
		service.NewMonthlySurchargeService(visits, visitors),
		visits, visitors, dispatcher, logger)

	app := httptest.NewServer(handler.NewHTTPHandler(
		calculator, []handler.Resetter{visits, visitors, exemptions}, logger).NewRouter())

	return &testEnv{
		app:          app,
		invoiceCalls: &invoiceCalls,
		invoiceFail:  &invoiceFail,
		cleanup: func() {
			app.Close()
			invoiceAPI.Close()
			visitorAPI.Close()
		},
	}
}

type priceResponse struct {
	PriceAmount   float64 `json:"price_amount"`
	PriceCurrency string  `json:"price_currency"`
	PersonID      string  `json:"person_id"`
	VisitID       string  `json:"visit_id"`
}

func calculate(t *testing.T, env *testEnv, personID, visitID, date string, kg int) (int, priceResponse) {
	t.Helper()
	body := fmt.Sprintf(`{
		"date": %q,
		"person_id": %q,
		"visit_id": %q,
		"dropped_fractions": [{"fraction_type": "Green waste", "amount_dropped": %d}]
	}`, date, personID, visitID, kg)

	resp, err := http.Post(env.app.URL+"/calculatePrice", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var out priceResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode, out
}

func TestMonthlySurchargeFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	date := "2025-09-10T10:00:00Z"
	for i, want := range []float64{8.30, 8.30, 8.715} {
		status, resp := calculate(t, env, "ind-1", fmt.Sprintf("v-%d", i+1), date, 83)
		if status != http.StatusOK {
			t.Fatalf("visit %d: expected 200, got %d", i+1, status)
		}
		if resp.PriceAmount != want {
			t.Errorf("visit %d: expected %v, got %v", i+1, want, resp.PriceAmount)
		}
	}

	if env.invoiceCalls.Load() != 0 {
		t.Errorf("individual customer must not be invoiced, got %d calls", env.invoiceCalls.Load())
	}
}

func TestBusinessInvoiceFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	status, resp := calculate(t, env, "biz-1", "v-1", "2025-09-10T10:00:00Z", 83)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp.PriceAmount != 8.30 {
		t.Errorf("expected 8.30 at the business discount rate, got %v", resp.PriceAmount)
	}
	if env.invoiceCalls.Load() != 1 {
		t.Errorf("expected exactly one invoice call, got %d", env.invoiceCalls.Load())
	}
}

func TestInvoiceFailureDoesNotChangeResponse(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	env.invoiceFail.Store(true)

	status, resp := calculate(t, env, "biz-1", "v-1", "2025-09-10T10:00:00Z", 83)
	if status != http.StatusOK {
		t.Fatalf("expected 200 despite invoice failure, got %d", status)
	}
	if resp.PriceAmount != 8.30 {
		t.Errorf("expected price unchanged by invoice failure, got %v", resp.PriceAmount)
	}
	if env.invoiceCalls.Load() != 1 {
		t.Errorf("expected the invoice call to have been attempted, got %d", env.invoiceCalls.Load())
	}
}

func TestOakCityConstructionExemptionFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	post := func(visitID string, kg int) priceResponse {
		body := fmt.Sprintf(`{
			"date": "2025-09-10T10:00:00Z",
			"person_id": "oak-biz",
			"visit_id": %q,
			"dropped_fractions": [{"fraction_type": "Construction waste", "amount_dropped": %d}]
		}`, visitID, kg)
		resp, err := http.Post(env.app.URL+"/calculatePrice", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out priceResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return out
	}

	// 800 kg in the low tier: 800 * 0.21 = 168.
	if resp := post("v-1", 800); resp.PriceAmount != 168 {
		t.Errorf("expected 168, got %v", resp.PriceAmount)
	}
	// 400 kg more: 200 low (42) + 200 high (58) = 100.
	if resp := post("v-2", 400); resp.PriceAmount != 100 {
		t.Errorf("expected 100, got %v", resp.PriceAmount)
	}
}

func TestHouseholdSharesConstructionExemptionFlow(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	post := func(personID, visitID string, kg int) priceResponse {
		body := fmt.Sprintf(`{
			"date": "2025-09-10T10:00:00Z",
			"person_id": %q,
			"visit_id": %q,
			"dropped_fractions": [{"fraction_type": "Construction waste", "amount_dropped": %d}]
		}`, personID, visitID, kg)
		resp, err := http.Post(env.app.URL+"/calculatePrice", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var out priceResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return out
	}

	// First resident, 400 kg in the low tier: 400 * 0.125 = 50.
	if resp := post("oak-ind-1", "v-1", 400); resp.PriceAmount != 50 {
		t.Errorf("expected 50, got %v", resp.PriceAmount)
	}
	// Second resident at the same address shares the limit:
	// 100 low (12.5) + 100 high (20) = 32.5.
	if resp := post("oak-ind-2", "v-2", 200); resp.PriceAmount != 32.5 {
		t.Errorf("expected 32.5, got %v", resp.PriceAmount)
	}
}

func TestScenarioReset(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	date := "2025-09-10T10:00:00Z"
	for i := 0; i < 2; i++ {
		if status, _ := calculate(t, env, "ind-1", fmt.Sprintf("v-%d", i+1), date, 83); status != http.StatusOK {
			t.Fatalf("setup visit failed: %d", status)
		}
	}

	resp, err := http.Post(env.app.URL+"/startScenario", "application/json", nil)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from startScenario, got %d", resp.StatusCode)
	}

	status, out := calculate(t, env, "ind-1", "v-3", date, 83)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if out.PriceAmount != 8.30 {
		t.Errorf("expected fresh monthly counter after reset, got %v", out.PriceAmount)
	}
}
