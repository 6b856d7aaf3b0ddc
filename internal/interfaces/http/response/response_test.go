package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pyassist/backend/internal/infrastructure/log"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, requestID string, handle gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		if requestID != "" {
			c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), requestID))
		}
		handle(c)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestSuccess_EchoesRequestID(t *testing.T) {
	w := serve(t, "req-42", func(c *gin.Context) { Success(c, gin.H{"text": "hola"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","request_id":"req-42","data":{"text":"hola"}}`, w.Body.String())

	w = serve(t, "", func(c *gin.Context) { Success(c, nil) })
	assert.JSONEq(t, `{"code":0,"message":"success"}`, w.Body.String())
}

func TestErrorWithDetail(t *testing.T) {
	w := serve(t, "req-7", func(c *gin.Context) {
		ErrorWithDetail(c, http.StatusBadGateway, 400001, "上下文检索失败", "retrieval failed: dial tcp")
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"code":400001,"message":"上下文检索失败","request_id":"req-7","detail":"retrieval failed: dial tcp"}`, w.Body.String())

	w = serve(t, "", func(c *gin.Context) { Error(c, http.StatusNotFound, 600001, "not found") })
	assert.JSONEq(t, `{"code":600001,"message":"not found"}`, w.Body.String())
}

func TestSuccessWithPage(t *testing.T) {
	w := serve(t, "", func(c *gin.Context) { SuccessWithPage(c, []int{1, 2}, 2, 2, 5) })
	assert.JSONEq(t, `{"code":0,"message":"success","data":[1,2],"page":{"page":2,"page_size":2,"total":5,"pages":3}}`, w.Body.String())
}

func TestNewPageInfo(t *testing.T) {
	assert.Equal(t, PageInfo{Page: 1, PageSize: 50, Total: 0, Pages: 0}, NewPageInfo(1, 50, 0))
	assert.Equal(t, 1, NewPageInfo(1, 50, 50).Pages)
	assert.Equal(t, 2, NewPageInfo(1, 50, 51).Pages)
	assert.Zero(t, NewPageInfo(1, 0, 10).Pages)
}
