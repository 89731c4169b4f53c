package app

import (
	"bitwise74/usercontent-api/app/content"
	"bitwise74/usercontent-api/app/root"
	"bitwise74/usercontent-api/internal"
	"bitwise74/usercontent-api/pkg/middleware"
	"context"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter builds the HTTP handler. Background work started by the middleware
// stops once ctx is done
func NewRouter(ctx context.Context, d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors"),
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead || c.FullPath() == "/metrics"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.MetricsMiddleware(),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	// GET /			-> Tells browsers there's nothing to see here
	router.GET("/", root.Index)

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// GET /metrics			-> Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	m := router.Group("", rateLimiter)
	{
		// POST /upload			-> Stores a new file for the owner of a session token
		m.POST("/upload", middleware.BodySizeLimiter(viper.GetInt64("upload.max_body")), func(c *gin.Context) { content.ContentUpload(c, d) })

		// GET|POST /get_content_id	-> Resolves a public URL to its content ID
		m.GET("/get_content_id", cacheFor(viper.GetInt("cache.content_id_ttl")), func(c *gin.Context) { content.ContentIDFetch(c, d) })
		m.POST("/get_content_id", func(c *gin.Context) { content.ContentIDFetch(c, d) })

		// POST /get_file_info		-> Returns the metadata of a stored file
		m.POST("/get_file_info", func(c *gin.Context) { content.FileInfoFetch(c, d) })

		// POST /get_user_uploads	-> Lists every upload of the owner of a session token
		m.POST("/get_user_uploads", func(c *gin.Context) { content.UserUploadsFetch(c, d) })

		// POST /delete_content		-> Deletes a single file owned by the caller
		m.POST("/delete_content", func(c *gin.Context) { content.ContentDelete(c, d) })

		// POST /delete_all_content	-> Deletes every file owned by the caller
		m.POST("/delete_all_content", func(c *gin.Context) { content.ContentDeleteAll(c, d) })
	}

	return router
}

// MakeLogger replaces the global zap logger with the development one the app logs with
func MakeLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}

// cacheFor caches responses by request URI. A zero ttl turns caching off
func cacheFor(sec int) gin.HandlerFunc {
	if sec <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := persist.NewMemoryStore(time.Minute)
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
