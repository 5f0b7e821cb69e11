package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// none 无入参动作
type none = struct{}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v > 0 {
		return v
	}
	return def
}

// pageParams 非法或非正数回退默认值，limit 上限 100
func pageParams(c *gin.Context) (page, limit int) {
	page = atoiDefault(c.Query("page"), defaultPage)
	limit = min(atoiDefault(c.Query("limit"), defaultLimit), maxLimit)
	return page, limit
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}
