package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop-api/internal/core/auth"
	"sweetshop-api/internal/core/database"
	"sweetshop-api/internal/domain"
	"sweetshop-api/internal/repo"
	"sweetshop-api/internal/service"
	"sweetshop-api/internal/transport/http/handler"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Sweet{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "sweetshop-test", TTL: time.Hour}
	log := zap.NewNop()
	authSvc := service.NewAuthService(repo.NewUserRepo(db), jwter)
	invSvc := service.NewInventoryService(repo.NewSweetRepo(db))

	return NewAPIEngine(log, jwter,
		handler.NewAuthHandler(authSvc, log),
		handler.NewSweetHandler(invSvc, log),
	)
}

func do(t *testing.T, e *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func loginAs(t *testing.T, e *gin.Engine, username, email, role string) string {
	t.Helper()
	w := do(t, e, http.MethodPost, "/auth/register", "", gin.H{
		"username": username, "email": email, "password": "pw-" + username, "role": role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	w = do(t, e, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "pw-" + username})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", email, w.Code, w.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, w, &out)
	if out.Token == "" {
		t.Fatalf("empty token for %s", email)
	}
	return out.Token
}

func TestAuthEndpoints(t *testing.T) {
	e := newTestEngine(t)

	// 重复邮箱 → 400
	w := do(t, e, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w = do(t, e, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": "pw",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: %d %s", w.Code, w.Body.String())
	}
	var errBody struct {
		Error string `json:"error"`
	}
	decode(t, w, &errBody)
	if errBody.Error == "" {
		t.Fatalf("error body missing: %s", w.Body.String())
	}

	// 错误密码 → 401
	w = do(t, e, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d %s", w.Code, w.Body.String())
	}
}

func TestAuthGate(t *testing.T) {
	e := newTestEngine(t)
	userTok := loginAs(t, e, "user1", "user1@example.com", "")

	// 未认证 → 401
	if w := do(t, e, http.MethodGet, "/items", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", w.Code)
	}
	if w := do(t, e, http.MethodGet, "/items", "garbage-token", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", w.Code)
	}

	// 普通用户访问管理员接口 → 403
	if w := do(t, e, http.MethodPost, "/items", userTok, gin.H{"name": "x", "category": "y", "price": 1}); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: %d", w.Code)
	}
	if w := do(t, e, http.MethodPost, "/items/any/restock", userTok, gin.H{"amount": 1}); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin restock: %d", w.Code)
	}

	// 普通用户可以读
	if w := do(t, e, http.MethodGet, "/items", userTok, nil); w.Code != http.StatusOK {
		t.Fatalf("list as user: %d %s", w.Code, w.Body.String())
	}
}

// spec 场景：建 10 件，买三次 9/8/7，补 5 → 12
func TestPurchaseRestockScenario(t *testing.T) {
	e := newTestEngine(t)
	adminTok := loginAs(t, e, "admin", "admin@example.com", "admin")
	userTok := loginAs(t, e, "buyer", "buyer@example.com", "")

	w := do(t, e, http.MethodPost, "/items", adminTok, gin.H{
		"name": "Fudge", "category": "Choco", "price": 5, "quantity": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created domain.Sweet
	decode(t, w, &created)
	if created.ID == "" || created.Quantity != 10 {
		t.Fatalf("created: %+v", created)
	}

	for _, want := range []int{9, 8, 7} {
		w = do(t, e, http.MethodPost, "/items/"+created.ID+"/purchase", userTok, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("purchase: %d %s", w.Code, w.Body.String())
		}
		var out struct {
			CurrentStock int `json:"currentStock"`
		}
		decode(t, w, &out)
		if out.CurrentStock != want {
			t.Fatalf("currentStock = %d, want %d", out.CurrentStock, want)
		}
	}

	w = do(t, e, http.MethodPost, "/items/"+created.ID+"/restock", adminTok, gin.H{"amount": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("restock: %d %s", w.Code, w.Body.String())
	}
	var out struct {
		CurrentStock int `json:"currentStock"`
	}
	decode(t, w, &out)
	if out.CurrentStock != 12 {
		t.Fatalf("currentStock = %d, want 12", out.CurrentStock)
	}

	// 非法补货量 → 400
	w = do(t, e, http.MethodPost, "/items/"+created.ID+"/restock", adminTok, gin.H{"amount": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("restock amount 0: %d %s", w.Code, w.Body.String())
	}
}

func TestOutOfStockAndNotFound(t *testing.T) {
	e := newTestEngine(t)
	adminTok := loginAs(t, e, "admin", "admin@example.com", "admin")

	w := do(t, e, http.MethodPost, "/items", adminTok, gin.H{
		"name": "Single", "category": "Rare", "price": 1, "quantity": 1,
	})
	var created domain.Sweet
	decode(t, w, &created)

	if w := do(t, e, http.MethodPost, "/items/"+created.ID+"/purchase", adminTok, nil); w.Code != http.StatusOK {
		t.Fatalf("first purchase: %d", w.Code)
	}
	w = do(t, e, http.MethodPost, "/items/"+created.ID+"/purchase", adminTok, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("purchase empty stock: %d %s", w.Code, w.Body.String())
	}
	var errBody struct {
		Error string `json:"error"`
	}
	decode(t, w, &errBody)
	if errBody.Error != "Out of stock" {
		t.Fatalf("error = %q", errBody.Error)
	}

	if w := do(t, e, http.MethodPost, "/items/no-such-id/purchase", adminTok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("purchase missing item: %d", w.Code)
	}
	if w := do(t, e, http.MethodDelete, "/items/no-such-id", adminTok, nil); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing item: %d", w.Code)
	}
	if w := do(t, e, http.MethodPut, "/items/no-such-id", adminTok, gin.H{"price": 2}); w.Code != http.StatusNotFound {
		t.Fatalf("update missing item: %d", w.Code)
	}
}

func TestSearchAndUpdateOverHTTP(t *testing.T) {
	e := newTestEngine(t)
	adminTok := loginAs(t, e, "admin", "admin@example.com", "admin")

	seed := []gin.H{
		{"name": "Chocolate Fudge", "category": "Choco", "price": 5.99, "quantity": 10},
		{"name": "Gummy Bears", "category": "Gummy", "price": 2.99, "quantity": 20},
		{"name": "Dark Chocolate Bar", "category": "Choco", "price": 20.99, "quantity": 5},
	}
	ids := make([]string, 0, len(seed))
	for _, b := range seed {
		w := do(t, e, http.MethodPost, "/items", adminTok, b)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", w.Code, w.Body.String())
		}
		var s domain.Sweet
		decode(t, w, &s)
		ids = append(ids, s.ID)
	}

	var list []domain.Sweet
	w := do(t, e, http.MethodGet, "/items", adminTok, nil)
	decode(t, w, &list)
	if len(list) != 3 {
		t.Fatalf("list len = %d", len(list))
	}

	w = do(t, e, http.MethodGet, "/items/search?name=Choc", adminTok, nil)
	decode(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("name search len = %d: %s", len(list), w.Body.String())
	}

	w = do(t, e, http.MethodGet, "/items/search?minPrice=5&maxPrice=10", adminTok, nil)
	decode(t, w, &list)
	if len(list) != 1 || list[0].Name != "Chocolate Fudge" {
		t.Fatalf("price search: %s", w.Body.String())
	}

	// 部分更新只动 price
	w = do(t, e, http.MethodPut, "/items/"+ids[0], adminTok, gin.H{"price": 6.49})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated domain.Sweet
	decode(t, w, &updated)
	if updated.Price != 6.49 || updated.Quantity != 10 || updated.Name != "Chocolate Fudge" {
		t.Fatalf("updated: %+v", updated)
	}

	// 非法字段 → 400
	if w := do(t, e, http.MethodPost, "/items", adminTok, gin.H{"category": "x", "price": -1}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid create: %d", w.Code)
	}

	// 删除后列表缩短
	if w := do(t, e, http.MethodDelete, "/items/"+ids[1], adminTok, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	w = do(t, e, http.MethodGet, "/items", adminTok, nil)
	decode(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("list after delete len = %d", len(list))
	}
}

func TestHealthAndMe(t *testing.T) {
	e := newTestEngine(t)
	if w := do(t, e, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	tok := loginAs(t, e, "dave", "dave@example.com", "")
	w := do(t, e, http.MethodGet, "/me", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var u domain.User
	decode(t, w, &u)
	if u.Email != "dave@example.com" || u.Role != domain.RoleUser {
		t.Fatalf("me body: %+v", u)
	}
}
