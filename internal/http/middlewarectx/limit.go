package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/ecolight/internal/http/response"
)

// maxVisitors ограничивает число отслеживаемых IP; самые давние вытесняются.
const maxVisitors = 100_000

// IPLimiter выдает по token bucket на каждый IP: requests запросов за window,
// с запасом на весь объем окна.
type IPLimiter struct {
	mu       sync.Mutex
	visitors *expirable.LRU[string, *rate.Limiter]
	every    rate.Limit
	burst    int
	now      func() time.Time
}

func NewIPLimiter(requests int, window time.Duration) *IPLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &IPLimiter{
		// Корзина, не использованная дольше окна, снова полна; ее можно забыть.
		visitors: expirable.NewLRU[string, *rate.Limiter](maxVisitors, nil, window),
		every:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		now:      time.Now,
	}
}

func (l *IPLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.visitors.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
	}
	// Повторный Add продлевает срок жизни записи.
	l.visitors.Add(ip, lim)
	return lim
}

// Allow сообщает, можно ли обслужить запрос с ip, и сколько запросов осталось.
func (l *IPLimiter) Allow(ip string) (bool, int) {
	lim := l.get(ip)
	now := l.now()
	ok := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return ok, remaining
}

// RateLimit отвечает 429, когда IP исчерпал лимит. Ставится после
// RealIP, чтобы RemoteAddr содержал адрес клиента.
func RateLimit(limiter *IPLimiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, remaining := limiter.Allow(ip)
			w.Header().Set("RateLimit-Limit", strconv.Itoa(limiter.burst))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				log.Warn("too many requests", slog.String("ip", ip))
				response.Write(w, r, http.StatusTooManyRequests, response.Error(response.MsgTooMany))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
