package model

import "strings"

// ClienteBuscado is a registered customer returned by the backend lookup.
// Read-only once selected in a draft.
type ClienteBuscado struct {
	Codigo     string   `json:"ccodclie"`
	RUC        string   `json:"crucclie"`
	Nombre     string   `json:"cnomclie"`
	Direccion  string   `json:"cdirclie"`
	Estrellas  int      `json:"nestrella"` // 1–5
	Comentario string   `json:"cestrella"`
	Latitud    *float64 `json:"latitud"`
	Longitud   *float64 `json:"longitud"`
}

// ClienteLibre is the free-text identity typed in when no registered customer is
// required. Boleta uses Nombres+DNI; the RUC fields are used by cashier receipts.
type ClienteLibre struct {
	Nombres     string `json:"nombres,omitempty"`
	DNI         string `json:"dni,omitempty"`
	RUC         string `json:"ruc,omitempty"`
	RazonSocial string `json:"razon_social,omitempty"`
	Direccion   string `json:"direccion,omitempty"`
	Correo      string `json:"correo,omitempty"`
}

// Vacio reports whether no field has been filled in.
func (c ClienteLibre) Vacio() bool {
	return c == ClienteLibre{}
}

// Normalizado returns a copy with surrounding whitespace removed from every field.
func (c ClienteLibre) Normalizado() ClienteLibre {
	return ClienteLibre{
		Nombres:     strings.TrimSpace(c.Nombres),
		DNI:         strings.TrimSpace(c.DNI),
		RUC:         strings.TrimSpace(c.RUC),
		RazonSocial: strings.TrimSpace(c.RazonSocial),
		Direccion:   strings.TrimSpace(c.Direccion),
		Correo:      strings.TrimSpace(c.Correo),
	}
}
