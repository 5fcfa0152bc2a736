package service

import (
	"ferrepos/internal/model"
)

// SelectorComprobante holds the document-type/series options loaded for the
// current confirmation and the chosen one.
type SelectorComprobante struct {
	opciones []model.Comprobante
	actual   *model.Comprobante
}

// Cargar replaces the options and drops the current choice.
func (s *SelectorComprobante) Cargar(opciones []model.Comprobante) {
	s.opciones = opciones
	s.actual = nil
}

// Seleccionar picks a loaded option. Returns a validation error for anything
// not offered by the backend.
func (s *SelectorComprobante) Seleccionar(tipo, serie string) (model.Comprobante, error) {
	for _, op := range s.opciones {
		if op.Tipo == tipo && op.Serie == serie {
			elegido := op
			s.actual = &elegido
			return op, nil
		}
	}
	return model.Comprobante{}, validacion("comprobante", "Tipo de comprobante "+tipo+"/"+serie+" no disponible")
}

func (s *SelectorComprobante) Actual() *model.Comprobante {
	if s.actual == nil {
		return nil
	}
	c := *s.actual
	return &c
}

func (s *SelectorComprobante) Opciones() []model.Comprobante {
	out := make([]model.Comprobante, len(s.opciones))
	copy(out, s.opciones)
	return out
}

// Reiniciar clears both the options and the choice.
func (s *SelectorComprobante) Reiniciar() {
	s.opciones = nil
	s.actual = nil
}
