package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"stockparty/internal/events"
	"stockparty/internal/game"
	"stockparty/internal/monitor"
	"stockparty/pkg/config"
	"stockparty/pkg/db"
)

type testEnv struct {
	server *httptest.Server
	bus    *events.Bus
	game   *game.State
	db     *db.Database
}

func newTestAPIServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}

	bus := events.NewBus()
	state := game.NewState(game.Settings{
		StockName:       "TEST STOCK",
		InitialCash:     10000,
		RewardThreshold: 1e9,
	})
	state.Advance(time.Now(), 100, true)

	cfg := &config.Config{
		StockSymbol:      "TEST",
		StockName:        "TEST STOCK",
		DefaultTradeUSD:  100,
		MilestoneOverlay: 3 * time.Second,
		RewardOverlay:    5 * time.Second,
		AdminPassword:    "hunter2",
		JWTSecret:        "test-secret",
		GiftCatalog:      map[string]float64{"rocket": 100},
	}

	server := NewServer(cfg, bus, database, state, monitor.NewSystemMetrics())
	httpServer := httptest.NewServer(server.Router)

	t.Cleanup(func() {
		httpServer.Close()
		_ = database.Close()
	})
	return &testEnv{server: httpServer, bus: bus, game: state, db: database}
}

func doJSON(t *testing.T, method, url, token string, payload any, out any) int {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestPostMessageExecutesTrade(t *testing.T) {
	env := newTestAPIServer(t)

	tradeCh, unsub := env.bus.Subscribe(events.EventTrade, 4)
	defer unsub()

	var resp struct {
		Success bool    `json:"success"`
		Action  string  `json:"action"`
		Amount  float64 `json:"amount"`
	}
	status := doJSON(t, http.MethodPost, env.server.URL+"/api/message", "",
		map[string]string{"text": "please buy 250 now", "user": "alice"}, &resp)

	if status != http.StatusOK {
		t.Fatalf("status=%d, want 200", status)
	}
	if !resp.Success || resp.Action != "buy" || resp.Amount != 250 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	snap := env.game.Snapshot()
	if snap.Cash != 9750 {
		t.Fatalf("cash=%v, want 9750", snap.Cash)
	}

	select {
	case msg := <-tradeCh:
		ev := msg.(game.TradeEvent)
		if ev.User != "alice" || ev.Action != "buy" || ev.Amount != 250 {
			t.Fatalf("unexpected trade event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no trade event published")
	}

	// Trade is journaled.
	trades, err := env.db.ListTrades(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListTrades: %v", err)
	}
	if len(trades) != 1 || trades[0].User != "alice" {
		t.Fatalf("trade not journaled: %+v", trades)
	}
}

func TestPostMessagePlainChatBroadcasts(t *testing.T) {
	env := newTestAPIServer(t)

	chatCh, unsub := env.bus.Subscribe(events.EventChat, 4)
	defer unsub()

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	doJSON(t, http.MethodPost, env.server.URL+"/api/message", "",
		map[string]string{"text": "to the moon!", "user": "bob"}, &resp)

	if !resp.Success || resp.Message != "Message sent" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	select {
	case msg := <-chatCh:
		ev := msg.(game.ChatEvent)
		if ev.User != "bob" || ev.Text != "to the moon!" {
			t.Fatalf("unexpected chat event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no chat event published")
	}
}

func TestPostMessageRejectedTradeIsSilentlyDropped(t *testing.T) {
	env := newTestAPIServer(t)

	tradeCh, unsubTrade := env.bus.Subscribe(events.EventTrade, 4)
	defer unsubTrade()
	chatCh, unsubChat := env.bus.Subscribe(events.EventChat, 4)
	defer unsubChat()

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	doJSON(t, http.MethodPost, env.server.URL+"/api/message", "",
		map[string]string{"text": "sell 5000", "user": "carol"}, &resp)

	if !resp.Success || resp.Message != "Message sent" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	select {
	case msg := <-tradeCh:
		t.Fatalf("rejected trade published an event: %v", msg)
	case msg := <-chatCh:
		t.Fatalf("rejected trade re-broadcast as chat: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPostMessageMissingText(t *testing.T) {
	env := newTestAPIServer(t)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	status := doJSON(t, http.MethodPost, env.server.URL+"/api/message", "",
		map[string]string{"user": "dave"}, &resp)

	if status != http.StatusOK || resp.Success {
		t.Fatalf("status=%d resp=%+v, want 200 with success=false", status, resp)
	}
}

func TestPostGiftCreditsCash(t *testing.T) {
	env := newTestAPIServer(t)

	giftCh, unsub := env.bus.Subscribe(events.EventGift, 4)
	defer unsub()

	var resp struct {
		Success   bool    `json:"success"`
		CashAdded float64 `json:"cashAdded"`
	}
	doJSON(t, http.MethodPost, env.server.URL+"/api/gift", "",
		map[string]any{"giftValue": 50, "user": "erin", "giftName": "rose"}, &resp)

	if !resp.Success || resp.CashAdded != 50 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if snap := env.game.Snapshot(); snap.Cash != 10050 {
		t.Fatalf("cash=%v, want 10050", snap.Cash)
	}

	select {
	case msg := <-giftCh:
		ev := msg.(game.GiftEvent)
		if ev.User != "erin" || ev.CashAdded != 50 {
			t.Fatalf("unexpected gift event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no gift event published")
	}
}

func TestPostGiftUsesCatalogValue(t *testing.T) {
	env := newTestAPIServer(t)

	var resp struct {
		CashAdded float64 `json:"cashAdded"`
	}
	doJSON(t, http.MethodPost, env.server.URL+"/api/gift", "",
		map[string]any{"user": "frank", "giftName": "rocket"}, &resp)

	if resp.CashAdded != 100 {
		t.Fatalf("cashAdded=%v, want catalog value 100", resp.CashAdded)
	}
}

func TestPostGiftUnknownWithoutValue(t *testing.T) {
	env := newTestAPIServer(t)

	status := doJSON(t, http.MethodPost, env.server.URL+"/api/gift", "",
		map[string]any{"user": "mallory", "giftName": "mystery"}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", status)
	}
	if snap := env.game.Snapshot(); snap.Cash != 10000 {
		t.Fatalf("cash=%v changed on rejected gift", snap.Cash)
	}
}

func TestGetStateServesSnapshot(t *testing.T) {
	env := newTestAPIServer(t)

	var snap game.Snapshot
	status := doJSON(t, http.MethodGet, env.server.URL+"/api/state", "", nil, &snap)
	if status != http.StatusOK {
		t.Fatalf("status=%d, want 200", status)
	}
	if snap.StockName != "TEST STOCK" || snap.StockPrice != 100 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestAdminFlow(t *testing.T) {
	env := newTestAPIServer(t)

	// No token.
	if status := doJSON(t, http.MethodPost, env.server.URL+"/api/admin/reset", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401 without token", status)
	}

	// Wrong password.
	if status := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/login", "",
		map[string]string{"password": "wrong"}, nil); status != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401 for wrong password", status)
	}

	var login struct {
		Token string `json:"token"`
	}
	if status := doJSON(t, http.MethodPost, env.server.URL+"/api/auth/login", "",
		map[string]string{"password": "hunter2"}, &login); status != http.StatusOK {
		t.Fatalf("login failed with status %d", status)
	}
	if login.Token == "" {
		t.Fatal("empty token")
	}

	// Garbage token.
	if status := doJSON(t, http.MethodPost, env.server.URL+"/api/admin/reset", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401 for bad token", status)
	}

	// Mutate, then reset.
	env.game.Buy(500)
	var reset struct {
		Success bool `json:"success"`
	}
	if status := doJSON(t, http.MethodPost, env.server.URL+"/api/admin/reset", login.Token, nil, &reset); status != http.StatusOK {
		t.Fatalf("reset failed with status %d", status)
	}
	if snap := env.game.Snapshot(); snap.Cash != 10000 || snap.Shares != 0 {
		t.Fatalf("reset did not restore opening position: %+v", snap)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	env := newTestAPIServer(t)

	doJSON(t, http.MethodPost, env.server.URL+"/api/message", "",
		map[string]string{"text": "buy 300", "user": "alice"}, nil)
	doJSON(t, http.MethodPost, env.server.URL+"/api/gift", "",
		map[string]any{"giftValue": 500, "user": "bob", "giftName": "whale"}, nil)

	var resp struct {
		Leaderboard []db.LeaderboardRow `json:"leaderboard"`
	}
	status := doJSON(t, http.MethodGet, env.server.URL+"/api/leaderboard", "", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("status=%d, want 200", status)
	}
	if len(resp.Leaderboard) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(resp.Leaderboard), resp.Leaderboard)
	}
	if resp.Leaderboard[0].User != "bob" {
		t.Fatalf("wrong order: %+v", resp.Leaderboard)
	}
}

func TestGetConfigExposesOverlayDurations(t *testing.T) {
	env := newTestAPIServer(t)

	var resp struct {
		StockSymbol        string `json:"stockSymbol"`
		MilestoneOverlayMs int64  `json:"milestoneOverlayMs"`
		RewardOverlayMs    int64  `json:"rewardOverlayMs"`
	}
	doJSON(t, http.MethodGet, env.server.URL+"/api/config", "", nil, &resp)

	if resp.StockSymbol != "TEST" {
		t.Fatalf("stockSymbol=%q, want TEST", resp.StockSymbol)
	}
	if resp.MilestoneOverlayMs != 3000 || resp.RewardOverlayMs != 5000 {
		t.Fatalf("overlays=%d/%d, want 3000/5000", resp.MilestoneOverlayMs, resp.RewardOverlayMs)
	}
}
