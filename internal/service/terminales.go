package service

import (
	"context"
	"sync"
	"time"

	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
)

// Terminal is the in-memory workspace of one login session.
type Terminal struct {
	Sesion     model.Sesion
	Catalogo   *Catalogo
	Pedido     *PuntoVenta
	Pendientes *RegistroPendientes

	ultimoUso time.Time
}

// Terminales owns every session's workspace. Workspaces are created on first
// use, dropped on logout and purged after a period without requests.
type Terminales struct {
	deps        Dependencias
	inactividad time.Duration
	now         func() time.Time

	mu         sync.Mutex
	terminales map[string]*Terminal
}

func NewTerminales(deps Dependencias, inactividad time.Duration) *Terminales {
	return &Terminales{
		deps:        deps,
		inactividad: inactividad,
		now:         time.Now,
		terminales:  make(map[string]*Terminal),
	}
}

// Obtener returns the workspace of sesion, creating it if needed.
func (t *Terminales) Obtener(sesion model.Sesion) *Terminal {
	t.mu.Lock()
	defer t.mu.Unlock()
	term, ok := t.terminales[sesion.ID]
	if !ok {
		catalogo := NewCatalogo(t.deps.Backend, sesion.Token)
		term = &Terminal{
			Sesion:     sesion,
			Catalogo:   catalogo,
			Pedido:     NewPuntoVenta(t.deps, sesion, catalogo),
			Pendientes: NewRegistroPendientes(t.deps.Backend, sesion),
		}
		t.terminales[sesion.ID] = term
		log.Debug().Str("sesion_id", sesion.ID).Str("usuario", sesion.Usuario.Nombre).Msg("terminal creada")
	}
	term.ultimoUso = t.now()
	return term
}

// Cerrar drops a session's workspace.
func (t *Terminales) Cerrar(sesionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.terminales, sesionID)
}

// Activas is the number of live workspaces.
func (t *Terminales) Activas() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.terminales)
}

// Purgar removes workspaces idle for longer than the inactivity period.
// A workspace with a submission in flight is kept.
func (t *Terminales) Purgar() int {
	limite := t.now().Add(-t.inactividad)
	t.mu.Lock()
	defer t.mu.Unlock()
	purgadas := 0
	for id, term := range t.terminales {
		if term.ultimoUso.Before(limite) && term.Pedido.Estado() != EstadoEnviando {
			delete(t.terminales, id)
			purgadas++
		}
	}
	return purgadas
}

// IniciarPurga runs Purgar every intervalo until ctx is done.
func (t *Terminales) IniciarPurga(ctx context.Context, intervalo time.Duration) {
	go func() {
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := t.Purgar(); n > 0 {
					log.Debug().
						Int("terminales_purgadas", n).
						Int("terminales_activas", t.Activas()).
						Msg("terminales inactivas purgadas")
				}
			}
		}
	}()
}
