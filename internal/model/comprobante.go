package model

// Tipos de comprobante used by the backend (ctipdocu).
const (
	TipoFactura = "01"
	TipoBoleta  = "03"
)

// Comprobante is a document-type / numbering-series pair offered by the backend.
// Tipo: "01" factura | "03" boleta | other backend-defined codes
type Comprobante struct {
	Tipo     string `json:"ctipdocu"`
	Serie    string `json:"cserdocu"`
	Codigo   string `json:"ccoddocu"`
	Etiqueta string `json:"listado"`
}

// RequiereClienteRegistrado reports whether sales under this document type must
// reference a registered, tax-ID-bearing customer. Every other type takes a
// free-text identity.
func (c Comprobante) RequiereClienteRegistrado() bool {
	return c.Tipo == TipoFactura
}
