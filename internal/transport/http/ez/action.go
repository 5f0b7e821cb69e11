package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"scentify/internal/core/errs"
	resp "scentify/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ {
	useJSONFieldNames()
	return EZ{g: g}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PATCH" | "PUT" | "DELETE"
	Path    string   // 例："/perfumes/:id"
	Binder  Binder   // 绑定方式
	Status  int      // 成功状态码，默认 200
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 绑定 → 执行 → 统一错误映射；成功时直接输出 O
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if c.GetString("userId") == "" {
				resp.Abort(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, c.GetString("role")) {
				resp.Abort(c, http.StatusForbidden, "forbidden")
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			Fail(c, bindErr)
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail 统一错误映射：
//   - *errs.Error → 其 Code/Msg
//   - validator.ValidationErrors → 422 + 字段错误
//   - 其它绑定错误 → 400
//   - 其余 → 500，原始错误交给访问日志
func Fail(c *gin.Context, err error) {
	var ae *errs.Error
	if errors.As(err, &ae) {
		if ae.Err != nil {
			_ = c.Error(ae.Err)
		}
		resp.Abort(c, ae.Code, ae.Msg)
		return
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, resp.Invalid(fieldErrors(ve)))
		return
	}
	if isBindError(err) {
		resp.Abort(c, http.StatusBadRequest, err.Error())
		return
	}
	_ = c.Error(err)
	resp.Abort(c, http.StatusInternalServerError, "")
}

func isBindError(err error) bool {
	var (
		syn  *json.SyntaxError
		typ  *json.UnmarshalTypeError
		maxb *http.MaxBytesError
	)
	if errors.As(err, &syn) || errors.As(err, &typ) || errors.As(err, &maxb) {
		return true
	}
	var num *strconv.NumError
	if errors.As(err, &num) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func fieldErrors(ve validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		key := fe.Field()
		switch fe.Tag() {
		case "required":
			out[key] = key + " is required"
		case "email":
			out[key] = key + " must be a valid email"
		case "min", "gte", "gt":
			out[key] = key + " must be at least " + fe.Param()
		case "max", "lte", "lt":
			out[key] = key + " must be at most " + fe.Param()
		default:
			out[key] = key + " is invalid"
		}
	}
	return out
}

var tagOnce sync.Once

// useJSONFieldNames 字段错误使用 json 名（firstName 而不是 FirstName）
func useJSONFieldNames() {
	tagOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
