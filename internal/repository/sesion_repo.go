package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ferrepos/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrSesionNoEncontrada is returned when a session id is unknown or expired.
var ErrSesionNoEncontrada = errors.New("sesion no encontrada")

// SesionRepository caches backend bearer tokens per login session.
type SesionRepository interface {
	Guardar(ctx context.Context, s *model.Sesion, ttl time.Duration) error
	Obtener(ctx context.Context, id string) (*model.Sesion, error)
	Eliminar(ctx context.Context, id string) error
}

// ── Redis ─────────────────────────────────────────────────────────────────────

type sesionRedisRepo struct{ rdb *redis.Client }

func NewSesionRepository(rdb *redis.Client) SesionRepository { return &sesionRedisRepo{rdb: rdb} }

func sesionKey(id string) string { return "sesion:" + id }

func (r *sesionRedisRepo) Guardar(ctx context.Context, s *model.Sesion, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("sesion: marshal: %w", err)
	}
	return r.rdb.Set(ctx, sesionKey(s.ID), raw, ttl).Err()
}

func (r *sesionRedisRepo) Obtener(ctx context.Context, id string) (*model.Sesion, error) {
	raw, err := r.rdb.Get(ctx, sesionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSesionNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	var s model.Sesion
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("sesion: unmarshal: %w", err)
	}
	return &s, nil
}

func (r *sesionRedisRepo) Eliminar(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, sesionKey(id)).Err()
}

// ── In-memory ─────────────────────────────────────────────────────────────────

type sesionMemRepo struct {
	mu       sync.Mutex
	sesiones map[string]model.Sesion
	vence    map[string]time.Time
	now      func() time.Time
}

// NewSesionMemRepository keeps sessions in process memory (development and tests).
func NewSesionMemRepository() SesionRepository {
	return &sesionMemRepo{
		sesiones: make(map[string]model.Sesion),
		vence:    make(map[string]time.Time),
		now:      time.Now,
	}
}

func (r *sesionMemRepo) Guardar(_ context.Context, s *model.Sesion, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sesiones[s.ID] = *s
	r.vence[s.ID] = r.now().Add(ttl)
	return nil
}

func (r *sesionMemRepo) Obtener(_ context.Context, id string) (*model.Sesion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sesiones[id]
	if !ok {
		return nil, ErrSesionNoEncontrada
	}
	if r.now().After(r.vence[id]) {
		delete(r.sesiones, id)
		delete(r.vence, id)
		return nil, ErrSesionNoEncontrada
	}
	return &s, nil
}

func (r *sesionMemRepo) Eliminar(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sesiones, id)
	delete(r.vence, id)
	return nil
}
