package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"jarvis/backend/go/pkg/circuitbreaker"
	"jarvis/backend/go/pkg/httpmiddleware"
	"jarvis/backend/go/pkg/logger"
	"jarvis/backend/go/pkg/ratelimiter"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions 包含路由的可选组件。
type RouterOptions struct {
	Logger    *logger.Logger
	Limiter   ratelimiter.RateLimiter // 为 nil 时不限流
	Breaker   *circuitbreaker.Breaker // 为 nil 时不熔断
	StaticDir string                  // 前端构建目录
}

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(opts.Logger))
	}

	// 预检请求没有注册的路由，所以 CORS 挂在引擎上而不是 /api 分组上
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
	}))

	apiGroup := r.Group("/api")
	if opts.Limiter != nil {
		apiGroup.Use(httpmiddleware.RateLimit(opts.Limiter))
	}
	if opts.Breaker != nil {
		apiGroup.Use(httpmiddleware.CircuitBreak(opts.Breaker))
	}
	{
		apiGroup.POST("/chat", h.Chat)
		apiGroup.POST("/teach_rule", h.TeachRule)
		apiGroup.GET("/explain", h.Explain)
		apiGroup.GET("/health", h.Health)
	}

	r.NoRoute(frontend(opts.StaticDir))
	return r
}

// frontend 提供单页应用：存在的文件直接返回，其余路径回退到 index.html。
func frontend(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dir == "" || !isDir(dir) {
			c.JSON(http.StatusNotFound, gin.H{
				"message":       "Frontend not found. Run 'npm run build' in the frontend/ directory.",
				"frontend_path": dir,
			})
			return
		}
		// 以 "/" 开头再 Clean，可以防止跳出静态目录
		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}

func isDir(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
