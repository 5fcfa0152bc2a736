package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ferrepos/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	fallos  int
	envios  int
	archivo string
	pdf     []byte
}

func (m *stubMailer) EnviarRecibo(_, _, _, nombreArchivo string, pdf []byte) error {
	m.envios++
	if m.envios <= m.fallos {
		return errors.New("smtp: 421 try again later")
	}
	m.archivo = nombreArchivo
	m.pdf = pdf
	return nil
}

func payloadDePrueba(t *testing.T, to string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ReciboEmailPayload{
		ToEmail: to,
		Subject: "Tu comprobante V-1",
		Recibo: model.Recibo{
			Titulo: "Boleta de venta",
			Numero: "V-1",
			Lineas: []model.ReciboLinea{{Descripcion: "Martillo", Cantidad: 1, PrecioUnitario: decimal.NewFromInt(65), Subtotal: decimal.NewFromInt(65)}},
			Total:  decimal.NewFromInt(65),
		},
	})
	require.NoError(t, err)
	return raw
}

func TestEmailWorker_ReintentaHastaEnviar(t *testing.T) {
	mailer := &stubMailer{fallos: 2}
	w := NewEmailWorker(mailer)
	w.espera = time.Millisecond

	require.NoError(t, w.Process(context.Background(), payloadDePrueba(t, "ana@example.com")))
	assert.Equal(t, 3, mailer.envios)
	assert.Equal(t, "recibo_V-1.pdf", mailer.archivo)
	assert.NotEmpty(t, mailer.pdf)
}

func TestEmailWorker_AgotaIntentos(t *testing.T) {
	mailer := &stubMailer{fallos: 10}
	w := NewEmailWorker(mailer)
	w.espera = time.Millisecond

	assert.Error(t, w.Process(context.Background(), payloadDePrueba(t, "ana@example.com")))
	assert.Equal(t, maxIntentosEmail, mailer.envios)
}

func TestEmailWorker_PayloadInvalidoYSinDestino(t *testing.T) {
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer)

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"to_email": 12}`)))
	assert.NoError(t, w.Process(context.Background(), payloadDePrueba(t, "")))
	assert.Equal(t, 0, mailer.envios)
}

func TestWithRetry_RespetaContexto(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	intentos := 0
	err := withRetry(ctx, 3, time.Hour, func(int) error {
		intentos++
		cancel()
		return errors.New("fallo")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, intentos)
}
