package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// cargaTimeout bounds a shared catalog load.
const cargaTimeout = 30 * time.Second

// Catalogo is the session's read-only copy of the backend product list.
// It is loaded on first use; concurrent first requests share one backend call.
// A failed load degrades to an empty catalog and is retried on the next request.
type Catalogo struct {
	backend Backend
	token   string

	grupo singleflight.Group

	mu        sync.RWMutex
	cargado   bool
	productos []model.Producto
	porID     map[int]model.Producto
}

func NewCatalogo(backend Backend, token string) *Catalogo {
	return &Catalogo{backend: backend, token: token}
}

// asegurar loads the catalog once. Reports whether it is available.
func (c *Catalogo) asegurar(ctx context.Context) bool {
	c.mu.RLock()
	listo := c.cargado
	c.mu.RUnlock()
	if listo {
		return true
	}
	return c.cargar(ctx) == nil
}

// cargar runs one shared load on a context detached from any single caller, so a
// cancelled request neither aborts nor fails the load for the other waiters.
// Each caller still stops waiting when its own ctx ends.
func (c *Catalogo) cargar(ctx context.Context) error {
	ch := c.grupo.DoChan("productos", func() (any, error) {
		cargaCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cargaTimeout)
		defer cancel()
		productos, err := c.backend.ListarProductos(cargaCtx, c.token)
		if err != nil {
			log.Warn().Err(err).Msg("catalogo: carga fallida, se muestra vacío")
			return nil, falloBackend("listar productos", err)
		}
		porID := make(map[int]model.Producto, len(productos))
		for _, p := range productos {
			porID[p.ID] = p
		}
		c.mu.Lock()
		c.productos = productos
		c.porID = porID
		c.cargado = true
		c.mu.Unlock()
		log.Debug().Int("productos", len(productos)).Msg("catalogo: cargado")
		return nil, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Buscar returns products whose name contains q, case-insensitively.
// An empty q returns the whole catalog. The bool is false when the catalog
// could not be loaded.
func (c *Catalogo) Buscar(ctx context.Context, q string) ([]model.Producto, bool) {
	if !c.asegurar(ctx) {
		return []model.Producto{}, false
	}
	q = strings.ToLower(strings.TrimSpace(q))

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Producto, 0, len(c.productos))
	for _, p := range c.productos {
		if q == "" || strings.Contains(strings.ToLower(p.Nombre), q) {
			out = append(out, p)
		}
	}
	return out, true
}

// Producto looks up one item by id.
func (c *Catalogo) Producto(ctx context.Context, id int) (model.Producto, error) {
	c.asegurar(ctx)
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.porID[id]
	if !ok {
		return model.Producto{}, noEncontrado("producto %d", id)
	}
	return p, nil
}

// Recargar forces a fresh load. On failure the previous copy is kept.
func (c *Catalogo) Recargar(ctx context.Context) error {
	return c.cargar(ctx)
}
