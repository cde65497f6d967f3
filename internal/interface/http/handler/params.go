package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

const dateLayout = "2006-01-02"

var (
	errInvalidID   = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的ID")
	errInvalidDate = apperrors.New(apperrors.ErrCodeInvalidParams, "日期格式应为YYYY-MM-DD")
)

// pathID 解析路径参数中的ID
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, errInvalidID)
		return 0, false
	}
	return uint(id), true
}

// queryID 解析可选的查询参数ID,未传时返回0
func queryID(c *gin.Context, name string) (uint, bool) {
	v := c.Query(name)
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		response.Error(c, errInvalidID)
		return 0, false
	}
	return uint(id), true
}

// parseDate 解析YYYY-MM-DD,按本地时区
func parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

// queryDate 解析可选的日期查询参数
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := parseDate(v)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return &t, true
}

// bindJSON 绑定请求体,失败时直接返回参数错误
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return false
	}
	return true
}
