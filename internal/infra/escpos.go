package infra

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"ferrepos/internal/model"
)

// ESC/POS command bytes.
const (
	escESC = 0x1B
	escGS  = 0x1D
	escLF  = 0x0A
)

const (
	alignLeft   = 0
	alignCenter = 1
)

// sinTildes maps characters missing from the printer's default code page.
var sinTildes = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	"ñ", "n", "Ñ", "N", "ü", "u", "Ü", "U", "°", "o", "¡", "!",
)

// ticketESCPOS accumulates an ESC/POS byte stream for a fixed character width.
type ticketESCPOS struct {
	buf   bytes.Buffer
	ancho int
}

func newTicketESCPOS(ancho int) *ticketESCPOS {
	if ancho <= 0 {
		ancho = 32
	}
	t := &ticketESCPOS{ancho: ancho}
	t.buf.Write([]byte{escESC, '@'})
	return t
}

func (t *ticketESCPOS) alinear(a byte) *ticketESCPOS {
	t.buf.Write([]byte{escESC, 'a', a})
	return t
}

func (t *ticketESCPOS) negrita(on bool) *ticketESCPOS {
	var b byte
	if on {
		b = 1
	}
	t.buf.Write([]byte{escESC, 'E', b})
	return t
}

func (t *ticketESCPOS) texto(s string) *ticketESCPOS {
	t.buf.WriteString(sinTildes.Replace(s))
	t.buf.WriteByte(escLF)
	return t
}

func (t *ticketESCPOS) separador() *ticketESCPOS {
	return t.texto(strings.Repeat("-", t.ancho))
}

// columnas prints izq left-aligned and der right-aligned on one line,
// cutting izq when both do not fit.
func (t *ticketESCPOS) columnas(izq, der string) *ticketESCPOS {
	izq, der = sinTildes.Replace(izq), sinTildes.Replace(der)
	espacio := t.ancho - utf8.RuneCountInString(der) - 1
	if espacio < 1 {
		espacio = 1
	}
	izq = truncar(izq, espacio)
	relleno := t.ancho - utf8.RuneCountInString(izq) - utf8.RuneCountInString(der)
	if relleno < 1 {
		relleno = 1
	}
	t.buf.WriteString(izq + strings.Repeat(" ", relleno) + der)
	t.buf.WriteByte(escLF)
	return t
}

func (t *ticketESCPOS) cortar() *ticketESCPOS {
	t.buf.Write([]byte{escLF, escLF, escLF})
	t.buf.Write([]byte{escGS, 'V', 0x01})
	return t
}

// ReciboESCPOS renders a receipt as raw ESC/POS bytes for a thermal printer
// ancho characters wide (32 for 58mm paper, 48 for 80mm).
func ReciboESCPOS(recibo model.Recibo, ancho int) []byte {
	t := newTicketESCPOS(ancho)

	t.alinear(alignCenter).negrita(true).texto(recibo.Encabezado.Negocio).negrita(false)
	if recibo.Encabezado.RUC != "" {
		t.texto("RUC " + recibo.Encabezado.RUC)
	}
	if recibo.Encabezado.Direccion != "" {
		t.texto(recibo.Encabezado.Direccion)
	}
	t.negrita(true).texto(recibo.Titulo).texto("N° " + recibo.Numero).negrita(false)

	t.alinear(alignLeft).texto(recibo.Fecha.Format("02/01/2006 15:04"))
	if recibo.Cliente != "" {
		t.texto("Cliente: " + recibo.Cliente)
	}
	t.separador()
	for _, l := range recibo.Lineas {
		t.columnas(fmt.Sprintf("%dx %s", l.Cantidad, l.Descripcion), l.Subtotal.StringFixed(2))
	}
	t.separador()
	t.negrita(true).columnas("TOTAL S/", recibo.Total.StringFixed(2)).negrita(false)
	if recibo.MetodoPago != "" {
		t.columnas("Pago", recibo.MetodoPago)
	}
	t.alinear(alignCenter).texto("Gracias por su compra")
	t.cortar()
	return t.buf.Bytes()
}
