package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code   int               `json:"code"`
	Msg    string            `json:"message"` // 前端读 error.message
	Data   interface{}       `json:"data"`
	Errors map[string]string `json:"errors,omitempty"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Invalid 422，附字段级错误
func Invalid(fields map[string]string) Resp {
	r := Error(CodeUnprocessable, "")
	r.Errors = fields
	return r
}

// Abort 错误体的 code 与 HTTP 状态一致
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
