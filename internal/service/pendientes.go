package service

import (
	"context"
	"strings"
	"sync"

	"ferrepos/internal/dto"
	"ferrepos/internal/model"

	"github.com/rs/zerolog/log"
)

// RegistroPendientes is the cashier's view of sales awaiting completion.
// The visible list is always the last one fetched from the backend.
type RegistroPendientes struct {
	backend Backend
	sesion  model.Sesion

	mu            sync.Mutex
	lista         []model.VentaPendiente
	campoBusqueda string
}

func NewRegistroPendientes(backend Backend, sesion model.Sesion) *RegistroPendientes {
	return &RegistroPendientes{backend: backend, sesion: sesion}
}

// Listar fetches the pending sales. On failure the previous list stays visible.
func (r *RegistroPendientes) Listar(ctx context.Context) (dto.PendientesResponse, error) {
	lista, err := r.backend.ListarVentasPendientes(ctx, r.sesion.Token)
	if err != nil {
		return dto.PendientesResponse{}, falloBackend("listar ventas pendientes", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lista = lista
	return r.vista(), nil
}

// Cancelar cancels a pending sale on the backend. confirmado must be true.
// The entry is removed locally and the list reloaded; a failed reload keeps the
// locally spliced list.
func (r *RegistroPendientes) Cancelar(ctx context.Context, id int, confirmado bool) (dto.PendientesResponse, error) {
	if !confirmado {
		return dto.PendientesResponse{}, validacion("confirmar", "Confirma la cancelación de la venta")
	}
	if err := r.backend.CancelarVenta(ctx, r.sesion.Token, id); err != nil {
		return dto.PendientesResponse{}, falloBackend("cancelar venta", err)
	}
	log.Info().Str("sesion_id", r.sesion.ID).Int("venta_id", id).Msg("pendientes: venta cancelada")

	r.mu.Lock()
	for i, v := range r.lista {
		if v.ID == id {
			r.lista = append(r.lista[:i:i], r.lista[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	lista, err := r.backend.ListarVentasPendientes(ctx, r.sesion.Token)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Str("sesion_id", r.sesion.ID).Msg("pendientes: recarga tras cancelar fallida")
	} else {
		r.lista = lista
	}
	return r.vista(), nil
}

// SeleccionarParaCompletar copies a visible pending sale's number into the
// lookup field. It loads nothing.
func (r *RegistroPendientes) SeleccionarParaCompletar(numero string) (dto.PendientesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.lista {
		if v.Numero == numero {
			r.campoBusqueda = numero
			return r.vista(), nil
		}
	}
	return dto.PendientesResponse{}, noEncontrado("venta pendiente %s no está en la lista", numero)
}

// BuscarPorNumero looks a pending sale up on the backend, by numero or, when
// empty, by the lookup field. A miss changes nothing.
func (r *RegistroPendientes) BuscarPorNumero(ctx context.Context, numero string) (*model.VentaPendiente, error) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		r.mu.Lock()
		numero = r.campoBusqueda
		r.mu.Unlock()
	}
	if numero == "" {
		return nil, validacion("numero", "Ingresa el número de venta")
	}
	lista, err := r.backend.ListarVentasPendientes(ctx, r.sesion.Token)
	if err != nil {
		return nil, falloBackend("buscar venta pendiente", err)
	}
	for _, v := range lista {
		if v.Numero == numero {
			encontrada := v
			return &encontrada, nil
		}
	}
	return nil, noEncontrado("no hay una venta pendiente con número %s", numero)
}

// Vista returns the current list without contacting the backend.
func (r *RegistroPendientes) Vista() dto.PendientesResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vista()
}

func (r *RegistroPendientes) vista() dto.PendientesResponse {
	data := make([]model.VentaPendiente, len(r.lista))
	copy(data, r.lista)
	return dto.PendientesResponse{Data: data, CampoBusqueda: r.campoBusqueda}
}
