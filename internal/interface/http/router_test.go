package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	appaudit "github.com/iruzen-dono/RestaurantApp/internal/application/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/application/catalog"
	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	"github.com/iruzen-dono/RestaurantApp/internal/application/export"
	apporder "github.com/iruzen-dono/RestaurantApp/internal/application/order"
	appstock "github.com/iruzen-dono/RestaurantApp/internal/application/stock"
	appuser "github.com/iruzen-dono/RestaurantApp/internal/application/user"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/category"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
	httpapi "github.com/iruzen-dono/RestaurantApp/internal/interface/http"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/handler"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/middleware"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql/mysqltest"
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
	"github.com/iruzen-dono/RestaurantApp/pkg/jwt"
)

// memorySessions 内存会话存储
type memorySessions struct {
	mu        sync.Mutex
	blacklist map[string]bool
}

func (s *memorySessions) SaveSession(context.Context, uint, map[string]interface{}, time.Duration) error {
	return nil
}

func (s *memorySessions) DeleteSession(context.Context, uint) error { return nil }

func (s *memorySessions) AddToBlacklist(_ context.Context, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[token] = true
	return nil
}

func (s *memorySessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[token], nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	t      *testing.T
	engine http.Handler
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := zaptest.NewLogger(t)
	db := mysqltest.NewDB(t)
	tx := mysql.NewTxManager(db)

	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	lineRepo := mysql.NewLineRepository(db)
	movementRepo := mysql.NewMovementRepository(db)
	auditRepo := mysql.NewAuditRepository(db)
	userRepo := mysql.NewUserRepository(db)

	// 同步写审计,测试里可以立即查到
	sink := audit.SinkFunc(func(ctx context.Context, e audit.Entry) {
		e.Actor = audit.ActorFrom(ctx)
		e.CreatedAt = time.Now()
		_ = auditRepo.Create(ctx, &e)
	})
	publisher := event.NopPublisher{}

	categorySvc := category.NewService(categoryRepo)
	productSvc := product.NewService(productRepo, categoryRepo)
	userSvc := user.NewServiceWithCost(userRepo, bcrypt.MinCost)
	_, err := userSvc.CreateUser(context.Background(), "caisse1", "secret")
	require.NoError(t, err)

	jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	sessions := &memorySessions{blacklist: map[string]bool{}}
	stats := dashboard.NewStatsUseCase(orderRepo, productRepo, nil, log)

	h := httpapi.Handlers{
		Auth: handler.NewAuthHandler(
			appuser.NewLoginUseCase(userSvc, jwtManager, sessions, log),
			appuser.NewLogoutUseCase(sessions),
		),
		Category: handler.NewCategoryHandler(
			catalog.NewCreateCategoryUseCase(categorySvc),
			catalog.NewQueryCategoriesUseCase(categorySvc),
			catalog.NewRenameCategoryUseCase(categorySvc),
			catalog.NewDeleteCategoryUseCase(categorySvc),
		),
		Product: handler.NewProductHandler(
			catalog.NewCreateProductUseCase(productSvc),
			catalog.NewUpdateProductUseCase(tx, productSvc),
			catalog.NewDeleteProductUseCase(productSvc),
			catalog.NewQueryProductsUseCase(productSvc),
			stats,
		),
		Order: handler.NewOrderHandler(handler.OrderUseCases{
			Create:     apporder.NewCreateOrderUseCase(orderRepo),
			Get:        apporder.NewGetOrderUseCase(orderRepo, lineRepo),
			List:       apporder.NewListOrdersUseCase(orderRepo),
			AddLine:    apporder.NewAddLineUseCase(orderRepo, lineRepo, productRepo, tx, sink),
			UpdateLine: apporder.NewUpdateLineQuantityUseCase(orderRepo, lineRepo, tx, sink),
			RemoveLine: apporder.NewRemoveLineUseCase(orderRepo, lineRepo, tx, sink),
			Validate:   apporder.NewValidateOrderUseCase(orderRepo, publisher, log),
			Cancel:     apporder.NewCancelOrderUseCase(orderRepo, publisher, log),
			Delete:     apporder.NewDeleteOrderUseCase(orderRepo, lineRepo, tx, sink),
			Revenue:    apporder.NewRevenueUseCase(orderRepo),
		}, stats),
		Stock: handler.NewStockHandler(
			appstock.NewRecordMovementUseCase(movementRepo, productRepo, tx, sink, publisher, log),
			appstock.NewAdjustStockUseCase(productRepo),
			appstock.NewListMovementsUseCase(movementRepo),
			stats,
		),
		Audit:     handler.NewAuditHandler(appaudit.NewListEntriesUseCase(auditRepo)),
		Dashboard: handler.NewDashboardHandler(stats),
		Export:    handler.NewExportHandler(export.NewExportUseCase(productRepo, orderRepo, log)),
	}

	auth := middleware.NewAuthMiddleware(jwtManager, sessions)
	engine := httpapi.NewRouter(httpapi.RouterOptions{Mode: "test"}, log, auth, h)
	return &server{t: t, engine: engine}
}

func (s *server) raw(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *server) do(method, path string, body any) envelope {
	s.t.Helper()
	w := s.raw(method, path, body)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// ok 断言成功并解析data
func (s *server) ok(method, path string, body any, dst any) {
	s.t.Helper()
	env := s.do(method, path, body)
	require.Equal(s.t, 0, env.Code, env.Message)
	if dst != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
}

func (s *server) login() {
	s.t.Helper()
	var resp appuser.LoginResponse
	s.ok(http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "caisse1", "password": "secret"}, &resp)
	s.token = resp.AccessToken
}

func id(v uint) string { return strconv.FormatUint(uint64(v), 10) }

func TestPublicRoutes(t *testing.T) {
	s := newServer(t)

	s.ok(http.MethodGet, "/ping", nil, nil)

	w := s.raw(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pos_http_requests_total")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAuth(t *testing.T) {
	s := newServer(t)

	t.Run("未登录", func(t *testing.T) {
		assert.Equal(t, apperrors.ErrCodeUnauthorized, s.do(http.MethodGet, "/api/v1/orders", nil).Code)
	})

	t.Run("密码错误", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "caisse1", "password": "bad"})
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, env.Code)
	})

	t.Run("缺少字段", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"login": "caisse1"})
		assert.Equal(t, apperrors.ErrCodeBindError, env.Code)
	})

	t.Run("登出后Token失效", func(t *testing.T) {
		s.login()
		s.ok(http.MethodGet, "/api/v1/orders", nil, nil)
		s.ok(http.MethodPost, "/api/v1/auth/logout", nil, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, s.do(http.MethodGet, "/api/v1/orders", nil).Code)
	})
}

func TestOrderFlow(t *testing.T) {
	s := newServer(t)
	s.login()

	var cat catalog.CategoryResponse
	s.ok(http.MethodPost, "/api/v1/categories", map[string]any{"label": "Boissons"}, &cat)

	var coca, eau catalog.ProductResponse
	s.ok(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Coca", "category_id": cat.ID, "unit_price": "2.50", "stock_on_hand": 10, "alert_threshold": 5,
	}, &coca)
	s.ok(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Eau", "category_id": cat.ID, "unit_price": "1.00",
	}, &eau)
	assert.Equal(t, 10, eau.AlertThreshold)

	// 开单加菜
	var o apporder.OrderResponse
	s.ok(http.MethodPost, "/api/v1/orders", nil, &o)
	assert.Equal(t, "0.00", o.Total)

	var line apporder.LineResponse
	s.ok(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/lines", map[string]any{"product_id": coca.ID, "quantity": 3}, &line)
	assert.Equal(t, "7.50", line.Amount)
	s.ok(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/lines", map[string]any{"product_id": eau.ID, "quantity": 2}, nil)

	t.Run("数量为0", func(t *testing.T) {
		env := s.do(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/lines", map[string]any{"product_id": coca.ID, "quantity": 0})
		assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
	})

	var detail apporder.OrderResponse
	s.ok(http.MethodGet, "/api/v1/orders/"+id(o.ID), nil, &detail)
	assert.Equal(t, "9.50", detail.Total)
	assert.Len(t, detail.Lines, 2)

	t.Run("进行中的订单不能删除", func(t *testing.T) {
		assert.Equal(t, apperrors.ErrCodeOrderNotDeletable, s.do(http.MethodDelete, "/api/v1/orders/"+id(o.ID), nil).Code)
	})

	// 结账
	s.ok(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/validate", nil, &detail)
	assert.Equal(t, "VALIDEE", detail.State)
	assert.Equal(t, apperrors.ErrCodeInvalidStateTransition, s.do(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/validate", nil).Code)

	var revenue apporder.RevenueResponse
	s.ok(http.MethodGet, "/api/v1/revenue?date="+o.Date, nil, &revenue)
	assert.Equal(t, "9.50", revenue.Revenue)
	s.ok(http.MethodGet, "/api/v1/revenue?from=2000-01-01&to=2000-01-31", nil, &revenue)
	assert.Equal(t, "0.00", revenue.Revenue)
	assert.Equal(t, apperrors.ErrCodeInvalidParams, s.do(http.MethodGet, "/api/v1/revenue?date=01/03/2024", nil).Code)

	var stats dashboard.Stats
	s.ok(http.MethodGet, "/api/v1/dashboard", nil, &stats)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, "9.5", stats.Revenue.String())

	// 取消后可以删除
	s.ok(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/cancel", nil, nil)
	assert.Equal(t, apperrors.ErrCodeAlreadyCancelled, s.do(http.MethodPost, "/api/v1/orders/"+id(o.ID)+"/cancel", nil).Code)
	s.ok(http.MethodDelete, "/api/v1/orders/"+id(o.ID), nil, nil)
	assert.Equal(t, apperrors.ErrCodeOrderNotFound, s.do(http.MethodGet, "/api/v1/orders/"+id(o.ID), nil).Code)

	// 审计:两次加菜 + 一次按订单删除明细
	var entries []appaudit.EntryResponse
	s.ok(http.MethodGet, "/api/v1/audit?table=ligne_commande", nil, &entries)
	require.Len(t, entries, 3)
	assert.Equal(t, "DELETE", entries[0].Action)
	assert.Nil(t, entries[0].RecordID)
	assert.Equal(t, "caisse1", entries[0].User)

	t.Run("有商品的分类不能删除", func(t *testing.T) {
		assert.Equal(t, apperrors.ErrCodeConstraintViolation, s.do(http.MethodDelete, "/api/v1/categories/"+id(cat.ID), nil).Code)
	})
}

func TestStockFlow(t *testing.T) {
	s := newServer(t)
	s.login()

	var p catalog.ProductResponse
	s.ok(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Coca", "unit_price": "2.50", "stock_on_hand": 10, "alert_threshold": 5,
	}, &p)

	var m appstock.MovementResponse
	s.ok(http.MethodPost, "/api/v1/stock/movements", map[string]any{"product_id": p.ID, "type": "SORTIE", "quantity": 4, "reason": "vente"}, &m)
	assert.Equal(t, 6, m.Product.StockOnHand)
	s.ok(http.MethodPost, "/api/v1/stock/movements", map[string]any{"product_id": p.ID, "type": "SORTIE", "quantity": 3}, &m)
	assert.True(t, m.Product.LowStock)

	env := s.do(http.MethodPost, "/api/v1/stock/movements", map[string]any{"product_id": p.ID, "type": "SORTIE", "quantity": 10})
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, env.Code)

	var low []catalog.ProductResponse
	s.ok(http.MethodGet, "/api/v1/products/low-stock", nil, &low)
	require.Len(t, low, 1)
	assert.Equal(t, 3, low[0].StockOnHand)

	var movements []appstock.MovementResponse
	s.ok(http.MethodGet, "/api/v1/stock/movements?product_id="+id(p.ID), nil, &movements)
	assert.Len(t, movements, 2)

	// 直接调整不留流水
	var ps appstock.ProductStock
	s.ok(http.MethodPost, "/api/v1/stock/increase", map[string]any{"product_id": p.ID, "quantity": 7}, &ps)
	assert.Equal(t, 10, ps.StockOnHand)
	s.ok(http.MethodGet, "/api/v1/stock/movements?product_id="+id(p.ID), nil, &movements)
	assert.Len(t, movements, 2)

	assert.Equal(t, apperrors.ErrCodeInvalidParams, s.do(http.MethodGet, "/api/v1/stock/movements?date=hier", nil).Code)
}

func TestExport(t *testing.T) {
	s := newServer(t)
	s.login()
	s.ok(http.MethodPost, "/api/v1/products", map[string]any{"name": "Pâtes, sauce", "unit_price": "9.50"}, nil)

	w := s.raw(http.MethodGet, "/api/v1/exports/products.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"Pâtes, sauce"`)

	w = s.raw(http.MethodGet, "/api/v1/exports/orders.csv", nil)
	assert.Equal(t, "id,date_commande,etat,total\n", w.Body.String())
}
