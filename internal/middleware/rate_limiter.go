package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"ferrepos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────

// ventana counts requests of one key until fin.
type ventana struct {
	count int
	fin   time.Time
}

type limitador struct {
	nombre   string
	limite   int
	duracion time.Duration

	mu       sync.Mutex
	entradas map[string]*ventana
}

var (
	limitadores   []*limitador
	limitadoresMu sync.Mutex
)

func newLimitador(nombre string, limite int, duracion time.Duration) *limitador {
	l := &limitador{nombre: nombre, limite: limite, duracion: duracion, entradas: make(map[string]*ventana)}
	limitadoresMu.Lock()
	limitadores = append(limitadores, l)
	limitadoresMu.Unlock()
	return l
}

// permitir counts one request for clave. When the limit is exceeded it returns
// false and the end of the current window.
func (l *limitador) permitir(clave string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entradas[clave]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.duracion)}
		l.entradas[clave] = v
	}
	v.count++
	return v.count <= l.limite, v.fin
}

func (l *limitador) purgar(now time.Time) (purgadas, restantes int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range l.entradas {
		if now.After(v.fin) {
			delete(l.entradas, k)
			purgadas++
		}
	}
	return purgadas, len(l.entradas)
}

// ── Middlewares ───────────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	l := newLimitador("login", 20, time.Minute)
	return func(c *gin.Context) {
		if ok, _ := l.permitir(c.ClientIP(), time.Now()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter limits every IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newLimitador("api", limit, window)
	return func(c *gin.Context) {
		now := time.Now()
		ok, fin := l.permitir(c.ClientIP(), now)
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(fin.Sub(now).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes expired windows so IPs that never return do not
// accumulate in memory.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		limitadoresMu.Lock()
		actuales := append([]*limitador(nil), limitadores...)
		limitadoresMu.Unlock()

		for _, l := range actuales {
			if purgadas, restantes := l.purgar(now); purgadas > 0 {
				log.Debug().
					Str("limiter", l.nombre).
					Int("entries_purged", purgadas).
					Int("entries_remaining", restantes).
					Msg("rate limiter purged")
			}
		}
	}
}
