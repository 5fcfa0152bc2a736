package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ferrepos/internal/model"

	"github.com/redis/go-redis/v9"
)

// FormatoFecha is the day key of the same-day history.
const FormatoFecha = "2006-01-02"

// HistorialRepository keeps the seller's same-day list of acknowledged sales.
// It is a convenience cache; the backend remains the source of truth.
type HistorialRepository interface {
	Registrar(ctx context.Context, v model.VentaRegistrada) error
	ListarDelDia(ctx context.Context, vendedorID string, fecha time.Time) ([]model.VentaRegistrada, error)
}

// ── Redis ─────────────────────────────────────────────────────────────────────

type historialRedisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewHistorialRepository(rdb *redis.Client, ttl time.Duration) HistorialRepository {
	return &historialRedisRepo{rdb: rdb, ttl: ttl}
}

func historialKey(vendedorID string, fecha time.Time) string {
	return "historial:" + fecha.Format(FormatoFecha) + ":" + vendedorID
}

// Registrar appends to the day's list and refreshes the key TTL atomically.
func (r *historialRedisRepo) Registrar(ctx context.Context, v model.VentaRegistrada) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("historial: marshal: %w", err)
	}
	key := historialKey(v.VendedorID, v.RegistradaEn)
	pipe := r.rdb.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("historial: guardar %s: %w", key, err)
	}
	return nil
}

func (r *historialRedisRepo) ListarDelDia(ctx context.Context, vendedorID string, fecha time.Time) ([]model.VentaRegistrada, error) {
	items, err := r.rdb.LRange(ctx, historialKey(vendedorID, fecha), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("historial: listar: %w", err)
	}
	ventas := make([]model.VentaRegistrada, 0, len(items))
	for _, it := range items {
		var v model.VentaRegistrada
		if err := json.Unmarshal([]byte(it), &v); err != nil {
			return nil, fmt.Errorf("historial: unmarshal: %w", err)
		}
		ventas = append(ventas, v)
	}
	return ventas, nil
}

// ── In-memory ─────────────────────────────────────────────────────────────────

type historialMemRepo struct {
	mu     sync.Mutex
	ventas map[string][]model.VentaRegistrada
}

// NewHistorialMemRepository keeps history in process memory (development and tests).
func NewHistorialMemRepository() HistorialRepository {
	return &historialMemRepo{ventas: make(map[string][]model.VentaRegistrada)}
}

func (r *historialMemRepo) Registrar(_ context.Context, v model.VentaRegistrada) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := historialKey(v.VendedorID, v.RegistradaEn)
	r.ventas[key] = append(r.ventas[key], v)
	return nil
}

func (r *historialMemRepo) ListarDelDia(_ context.Context, vendedorID string, fecha time.Time) ([]model.VentaRegistrada, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.ventas[historialKey(vendedorID, fecha)]
	out := make([]model.VentaRegistrada, len(src))
	copy(out, src)
	return out, nil
}
