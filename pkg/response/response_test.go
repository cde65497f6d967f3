package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

func newContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	core, logs := observer.New(zap.DebugLevel)
	c.Set(LoggerKey, zap.New(core))
	return c, w, logs
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestSuccess(t *testing.T) {
	c, w, _ := newContext(t)
	Success(c, gin.H{"id": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	r := decode(t, w)
	assert.Equal(t, 0, r.Code)
	assert.Equal(t, "success", r.Message)
}

func TestError(t *testing.T) {
	t.Run("业务错误不记ERROR", func(t *testing.T) {
		c, w, logs := newContext(t)
		Error(c, apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足"))

		r := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, r.Code)
		assert.Equal(t, "库存不足", r.Message)
		assert.Nil(t, r.Data)
		assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
	})

	t.Run("内部原因只写日志", func(t *testing.T) {
		c, w, logs := newContext(t)
		Error(c, apperrors.Wrap(errors.New("dial tcp: connection refused"), "查询订单失败"))

		r := decode(t, w)
		assert.Equal(t, apperrors.ErrCodeDatabaseError, r.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
		require.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
	})

	t.Run("普通error包装为内部错误", func(t *testing.T) {
		c, w, _ := newContext(t)
		Error(c, errors.New("boom"))
		assert.Equal(t, apperrors.ErrCodeInternal, decode(t, w).Code)
	})
}

func TestCSV(t *testing.T) {
	c, w, _ := newContext(t)
	CSV(c, "produits.csv", []byte("id,nom\n"))

	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "produits.csv")
	assert.Equal(t, "id,nom\n", w.Body.String())
}
