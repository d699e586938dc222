package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/domain"
	"fitclub/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *zerolog.Logger) func(http.Handler) http.Handler {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "http").Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
			base.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// rateLimiter ограничивает частоту запросов по клиенту: для Mini App
// ключом служит Telegram ID, иначе адрес.
type rateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.cfg.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(telegramIDHeader)
		if key == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			key = host
		}

		if !l.getLimiter(key).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

const (
	telegramIDHeader        = "X-Telegram-Id"
	telegramUsernameHeader  = "X-Telegram-Username"
	telegramFirstNameHeader = "X-Telegram-First-Name"
	telegramLastNameHeader  = "X-Telegram-Last-Name"
	telegramLanguageHeader  = "X-Telegram-Language"
)

// identityMiddleware превращает заголовки Mini App в клиента клуба.
// Заголовкам доверяем: запросы приходят только через бот-шлюз,
// который их и проставляет.
func identityMiddleware(users domain.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(telegramIDHeader)
			telegramID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || telegramID <= 0 {
				writeError(w, http.StatusUnauthorized, "missing telegram identity")
				return
			}

			user, err := users.FindOrCreateByTelegram(
				r.Context(),
				telegramID,
				r.Header.Get(telegramUsernameHeader),
				r.Header.Get(telegramFirstNameHeader),
				r.Header.Get(telegramLastNameHeader),
				r.Header.Get(telegramLanguageHeader),
			)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to resolve user")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
