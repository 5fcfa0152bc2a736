package service

import (
	"strings"
	"unicode/utf8"

	"ferrepos/internal/model"
)

// longitudMinimaBusqueda is the shortest query sent to the backend.
const longitudMinimaBusqueda = 2

// ClienteResolver tracks the registered-customer search of one draft.
//
// A search is split in two halves so the backend runs without holding the
// draft lock: Iniciar issues a sequence number, Completar applies results only
// for the latest one. Any later Iniciar, Seleccionar or Limpiar makes older
// responses stale.
type ClienteResolver struct {
	consulta     string
	seq          uint64
	sugerencias  []model.ClienteBuscado
	seleccionado *model.ClienteBuscado
}

// Iniciar records the visible query and drops any previous selection.
// It returns the search sequence number, the trimmed query and whether the
// backend should be called at all.
func (r *ClienteResolver) Iniciar(consulta string) (uint64, string, bool) {
	r.seq++
	r.consulta = consulta
	r.seleccionado = nil
	q := strings.TrimSpace(consulta)
	if utf8.RuneCountInString(q) < longitudMinimaBusqueda {
		r.sugerencias = nil
		return r.seq, q, false
	}
	return r.seq, q, true
}

// Completar applies search results for seq. Stale results are discarded and
// false is returned.
func (r *ClienteResolver) Completar(seq uint64, candidatos []model.ClienteBuscado) bool {
	if seq != r.seq {
		return false
	}
	r.sugerencias = candidatos
	return true
}

// Seleccionar locks in a candidate from the current suggestions.
func (r *ClienteResolver) Seleccionar(codigo string) error {
	for _, c := range r.sugerencias {
		if c.Codigo == codigo {
			elegido := c
			r.seq++
			r.seleccionado = &elegido
			r.sugerencias = nil
			r.consulta = c.Nombre
			return nil
		}
	}
	return noEncontrado("cliente %s no está entre las sugerencias", codigo)
}

// Limpiar returns to the unresolved state and invalidates in-flight searches.
func (r *ClienteResolver) Limpiar() {
	r.seq++
	r.consulta = ""
	r.sugerencias = nil
	r.seleccionado = nil
}

func (r *ClienteResolver) Seleccionado() *model.ClienteBuscado {
	if r.seleccionado == nil {
		return nil
	}
	c := *r.seleccionado
	return &c
}

func (r *ClienteResolver) Consulta() string { return r.consulta }

func (r *ClienteResolver) Sugerencias() []model.ClienteBuscado {
	out := make([]model.ClienteBuscado, len(r.sugerencias))
	copy(out, r.sugerencias)
	return out
}
