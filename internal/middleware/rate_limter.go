package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== SubmitRateLimiter 提交限流器 ====================

// SubmitRateLimiter 提交限流器
// 防止同一来源高频触发提交（每次提交都会打到持久化服务）
type SubmitRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &SubmitRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *SubmitRateLimiter {
	return globalLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如客户端 IP
// interval: 冷却间隔
func (r *SubmitRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *SubmitRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== gin 中间件 ====================

// 同一来源两次提交之间的最小间隔
const submitCooldown = 5 * time.Second

// SubmitRateLimit 提交接口限流中间件，按客户端 IP 冷却
func SubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := globalLimiter.Check("submit:"+c.ClientIP(), submitCooldown)
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":        429,
				"message":     "提交过于频繁，请稍后再试",
				"retry_after": int(result.RetryAfter.Seconds()) + 1,
			})
			return
		}
		c.Next()
	}
}
