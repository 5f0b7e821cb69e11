package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentify/internal/core/errs"
)

type createIn struct {
	Name  string `json:"name"  binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Age   int    `json:"age"   binding:"gte=0"`
}

type out struct {
	Name string `json:"name"`
}

type body struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func setup(a Action[createIn, out], mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	RegisterAction(New(&r.RouterGroup), a)
	return r
}

func send(r http.Handler, method, path, payload string) (*httptest.ResponseRecorder, body) {
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var b body
	_ = json.Unmarshal(w.Body.Bytes(), &b)
	return w, b
}

func echo(c *gin.Context, in *createIn) (out, error) { return out{Name: in.Name}, nil }

func TestRegisterActionSuccess(t *testing.T) {
	r := setup(Action[createIn, out]{Method: http.MethodPost, Path: "/x", Binder: BindJSON, Status: http.StatusCreated, Handler: echo})
	w, _ := send(r, http.MethodPost, "/x", `{"name":"a","email":"a@x.io"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"a"}`, w.Body.String())
}

func TestRegisterActionValidation(t *testing.T) {
	r := setup(Action[createIn, out]{Method: http.MethodPost, Path: "/x", Binder: BindJSON, Handler: echo})

	w, b := send(r, http.MethodPost, "/x", `{"email":"nope","age":-1}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 422, b.Code)
	assert.Equal(t, "name is required", b.Errors["name"])
	assert.Equal(t, "email must be a valid email", b.Errors["email"])
	assert.Equal(t, "age must be at least 0", b.Errors["age"])

	w, b = send(r, http.MethodPost, "/x", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 400, b.Code)

	w, _ = send(r, http.MethodPost, "/x", `{"name":"a","email":"a@x.io","age":"old"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFailMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{errs.NotFound("Perfume", "1"), http.StatusNotFound, "Perfume with ID 1 not found"},
		{errs.Conflict("Email already exists"), http.StatusConflict, "Email already exists"},
		{errs.Unauthorized("Invalid token"), http.StatusUnauthorized, "Invalid token"},
		{errs.Upstream("Failed to upload images", errors.New("cdn down")), http.StatusInternalServerError, "Failed to upload images"},
		{errors.New("db exploded"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			r := setup(Action[createIn, out]{
				Method: http.MethodGet,
				Path:   "/x",
				Binder: BindNone,
				Handler: func(*gin.Context, *createIn) (out, error) {
					return out{}, tc.err
				},
			})
			w, b := send(r, http.MethodGet, "/x", "")
			assert.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.code, b.Code)
			assert.Equal(t, tc.msg, b.Message)
			assert.NotContains(t, w.Body.String(), "db exploded")
		})
	}
}

func TestRegisterActionAuth(t *testing.T) {
	a := Action[createIn, out]{Method: http.MethodGet, Path: "/x", Binder: BindNone, Auth: true, Roles: []string{"admin"}, Handler: echo}

	w, _ := send(setup(a), http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	asUser := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("userId", "u1")
			c.Set("role", role)
		}
	}
	w, _ = send(setup(a, asUser("user")), http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = send(setup(a, asUser("admin")), http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
