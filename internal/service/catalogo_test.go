package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ferrepos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogo_CargaUnicaConcurrente(t *testing.T) {
	backend := newStubBackend()
	liberar := make(chan struct{})
	backend.productosFn = func() ([]model.Producto, error) {
		<-liberar
		return backend.productos, nil
	}
	cat := NewCatalogo(backend, "tok")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			productos, ok := cat.Buscar(context.Background(), "")
			assert.True(t, ok)
			assert.Len(t, productos, 3)
		}()
	}
	require.Eventually(t, func() bool { return backend.veces("productos") == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(liberar)
	wg.Wait()

	assert.Equal(t, 1, backend.veces("productos"))
	assert.Equal(t, []string{"tok"}, backend.tokens)
}

func TestCatalogo_CancelarUnaPeticionNoAfectaALasDemas(t *testing.T) {
	backend := newStubBackend()
	liberar := make(chan struct{})
	backend.productosFn = func() ([]model.Producto, error) {
		<-liberar
		return backend.productos, nil
	}
	cat := NewCatalogo(backend, "tok")

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	resA := make(chan bool, 1)
	go func() {
		_, ok := cat.Buscar(ctxA, "")
		resA <- ok
	}()
	require.Eventually(t, func() bool { return backend.veces("productos") == 1 }, time.Second, 5*time.Millisecond)

	resB := make(chan []model.Producto, 1)
	go func() {
		productos, _ := cat.Buscar(context.Background(), "")
		resB <- productos
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.False(t, <-resA)

	close(liberar)
	assert.Len(t, <-resB, 3)
	assert.Equal(t, 1, backend.veces("productos"))

	productos, ok := cat.Buscar(context.Background(), "")
	assert.True(t, ok)
	assert.Len(t, productos, 3)
}

func TestCatalogo_BuscarPorNombre(t *testing.T) {
	cat := NewCatalogo(newStubBackend(), "tok")

	productos, ok := cat.Buscar(context.Background(), "  TALAD ")
	require.True(t, ok)
	require.Len(t, productos, 1)
	assert.Equal(t, 30, productos[0].ID)

	p, err := cat.Producto(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, "UND", p.Unidad)
}

func TestCatalogo_FalloNoSeCachea(t *testing.T) {
	backend := newStubBackend()
	fallar := true
	backend.productosFn = func() ([]model.Producto, error) {
		if fallar {
			return nil, errors.New("connection refused")
		}
		return backend.productos, nil
	}
	cat := NewCatalogo(backend, "tok")

	productos, ok := cat.Buscar(context.Background(), "")
	assert.False(t, ok)
	assert.Empty(t, productos)
	_, err := cat.Producto(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNoEncontrado)

	fallar = false
	productos, ok = cat.Buscar(context.Background(), "")
	assert.True(t, ok)
	assert.Len(t, productos, 3)
	assert.Equal(t, 3, backend.veces("productos"))
}

func TestCatalogo_RecargarConservaCopiaSiFalla(t *testing.T) {
	backend := newStubBackend()
	cat := NewCatalogo(backend, "tok")
	_, ok := cat.Buscar(context.Background(), "")
	require.True(t, ok)

	backend.productosFn = func() ([]model.Producto, error) { return nil, errors.New("timeout") }
	err := cat.Recargar(context.Background())
	assert.ErrorIs(t, err, ErrBackend)

	productos, ok := cat.Buscar(context.Background(), "")
	assert.True(t, ok)
	assert.Len(t, productos, 3)
}
