package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func setupTestGin() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return client, mr
}

func get(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

func TestRateLimiter_Allow(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", okHandler)

	assert.Equal(t, http.StatusOK, get(router, "127.0.0.1:12345").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "127.0.0.1:12345").Code)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	router := setupTestGin()
	router.Use(RateLimiter(rate.Limit(1), 1))
	router.GET("/test", okHandler)

	assert.Equal(t, http.StatusOK, get(router, "127.0.0.1:12345").Code)
	assert.Equal(t, http.StatusOK, get(router, "192.168.1.1:12345").Code)
}

func TestDistributedRateLimiter_AllowRequests(t *testing.T) {
	client, _ := setupTestRedis(t)

	router := setupTestGin()
	limiter := NewDistributedRateLimiter(client, "test")
	router.Use(limiter.Middleware("api", &RateLimit{Rate: 2, Window: time.Minute}))
	router.GET("/test", okHandler)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(router, "127.0.0.1:12345").Code, "request %d", i+1)
	}

	w := get(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	assert.Equal(t, http.StatusOK, get(router, "10.0.0.1:12345").Code)
}

func TestDistributedRateLimiter_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	router := setupTestGin()
	limiter := NewDistributedRateLimiter(client, "test")
	router.Use(limiter.Middleware("api", &RateLimit{Rate: 1, Window: time.Minute, KeyFunc: IPKeyFunc}))
	router.GET("/test", okHandler)

	w := get(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-RateLimit-Error"))
}

func TestRecoveryWithLog(t *testing.T) {
	router := setupTestGin()
	router.Use(RecoveryWithLog())
	router.GET("/test", func(c *gin.Context) {
		panic("boom")
	})

	w := get(router, "127.0.0.1:12345")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}
