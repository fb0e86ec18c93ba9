package security

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Limits 限流参数
type Limits struct {
	MaxRequests int
	Window      time.Duration
}

// snapshot 某一时刻生效的 CORS 白名单与限流参数
type snapshot struct {
	origins    map[string]bool
	limits     Limits
	generation uint64
}

// Settings CORS 与限流的运行时配置。中间件每个请求读取当前快照，
// 配置热更新时整体替换快照，无需重启服务。
type Settings struct {
	current atomic.Pointer[snapshot]
	gen     atomic.Uint64
}

func NewSettings(allowedOrigins []string, limits Limits) *Settings {
	s := &Settings{}
	s.Update(allowedOrigins, limits)
	return s
}

// Update 替换当前快照。代数递增使已建立的限流器在下个请求时按新参数重建。
func (s *Settings) Update(allowedOrigins []string, limits Limits) {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	if limits.MaxRequests <= 0 {
		limits.MaxRequests = 1000
	}
	if limits.Window <= 0 {
		limits.Window = time.Minute
	}
	s.current.Store(&snapshot{
		origins:    origins,
		limits:     limits,
		generation: s.gen.Add(1),
	})
}

func (s *Settings) load() *snapshot {
	return s.current.Load()
}

// CORS 中间件 仅允许当前快照白名单中的Origin，支持Credentials
func CORS(settings *Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && settings.load().origins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// XSS保护
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "no-referrer")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// visitor 包装限流器和最后活跃时间，记录创建时的配置代数
type visitor struct {
	limiter    *rate.Limiter
	lastSeen   time.Time
	generation uint64
}

// RateLimiter 限流中间件 按IP限流，自动清理过期条目。
// 限流参数热更新后，旧代数的限流器在下个请求时按新参数重建。
func RateLimiter(settings *Settings) gin.HandlerFunc {
	store := make(map[string]*visitor)
	var mu sync.Mutex

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			expiry := settings.load().limits.Window * 3
			if expiry < time.Minute {
				expiry = time.Minute
			}
			mu.Lock()
			for ip, v := range store {
				if time.Since(v.lastSeen) > expiry {
					delete(store, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		snap := settings.load()
		key := c.ClientIP()

		mu.Lock()
		v, exists := store[key]
		if !exists || v.generation != snap.generation {
			r := rate.Every(snap.limits.Window / time.Duration(snap.limits.MaxRequests))
			v = &visitor{
				limiter:    rate.NewLimiter(r, snap.limits.MaxRequests),
				generation: snap.generation,
			}
			store[key] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
