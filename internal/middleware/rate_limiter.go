package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"kairo/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TenantRateLimiter caps requests per tenant in fixed windows shared by all
// replicas through Redis (INCR + EXPIRE). Must run after JWTAuth. When Redis
// is unavailable requests pass through.
func TenantRateLimiter(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		empresaID := GetEmpresaID(c)

		now := time.Now()
		slot := now.Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", empresaID, slot)

		ctx := c.Request.Context()
		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("rate limiter: redis unavailable")
			c.Next()
			return
		}

		if incr.Val() > int64(limit) {
			resetAt := time.Unix((slot+1)*int64(window.Seconds()), 0)
			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.NewCode("limite_excedido", "Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
