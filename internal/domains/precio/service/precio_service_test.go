package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercial-backend/internal/domains/precio/model"
)

// ============================================================================
// FAKE REPOSITORY
// ============================================================================

type fakePrecioRepo struct {
	reglaCliente    *model.PrecioProducto
	reglasVolumen   []*model.PrecioVolumen
	reglaEstacional *model.PrecioEstacional

	aplicados []*model.PrecioAplicado
	historial []*model.PrecioHistorial

	productos map[int64]*model.PrecioProducto
	nextID    int64
}

func newFakePrecioRepo() *fakePrecioRepo {
	return &fakePrecioRepo{
		productos: make(map[int64]*model.PrecioProducto),
		nextID:    1,
	}
}

func (f *fakePrecioRepo) CrearPrecioProducto(ctx context.Context, p *model.PrecioProducto) error {
	p.ID = f.nextID
	f.nextID++
	p.FechaCreacion = time.Now()
	f.productos[p.ID] = p
	return nil
}

func (f *fakePrecioRepo) ObtenerPrecioProducto(ctx context.Context, id int64) (*model.PrecioProducto, error) {
	p, ok := f.productos[id]
	if !ok {
		return nil, model.ErrPrecioNotFound
	}
	return p, nil
}

func (f *fakePrecioRepo) ListarPreciosProducto(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioProducto, error) {
	out := []*model.PrecioProducto{}
	for _, p := range f.productos {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePrecioRepo) ActualizarPrecioProducto(ctx context.Context, p *model.PrecioProducto) error {
	if _, ok := f.productos[p.ID]; !ok {
		return model.ErrPrecioNotFound
	}
	f.productos[p.ID] = p
	return nil
}

func (f *fakePrecioRepo) CrearPrecioVolumen(ctx context.Context, p *model.PrecioVolumen) error {
	p.ID = f.nextID
	f.nextID++
	f.reglasVolumen = append(f.reglasVolumen, p)
	return nil
}

func (f *fakePrecioRepo) ListarPreciosVolumen(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioVolumen, error) {
	return f.reglasVolumen, nil
}

func (f *fakePrecioRepo) CrearPrecioCategoria(ctx context.Context, p *model.PrecioCategoria) error {
	p.ID = f.nextID
	f.nextID++
	return nil
}

func (f *fakePrecioRepo) ListarPreciosCategoria(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioCategoria, error) {
	return nil, nil
}

func (f *fakePrecioRepo) CrearPrecioEstacional(ctx context.Context, p *model.PrecioEstacional) error {
	p.ID = f.nextID
	f.nextID++
	return nil
}

func (f *fakePrecioRepo) ListarPreciosEstacionales(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioEstacional, error) {
	return nil, nil
}

func (f *fakePrecioRepo) BuscarPrecioCliente(ctx context.Context, productoID, clienteID int64, ahora time.Time) (*model.PrecioProducto, error) {
	if f.reglaCliente != nil && f.reglaCliente.ProductoID == productoID {
		return f.reglaCliente, nil
	}
	return nil, nil
}

func (f *fakePrecioRepo) BuscarPrecioVolumen(ctx context.Context, productoID int64, cantidad decimal.Decimal, ahora time.Time) (*model.PrecioVolumen, error) {
	// Misma selección que el SQL: prioridad ASC, cantidad_minima DESC
	var mejor *model.PrecioVolumen
	for _, r := range f.reglasVolumen {
		if r.ProductoID != productoID || !r.CubreCantidad(cantidad) {
			continue
		}
		if mejor == nil {
			mejor = r
			continue
		}
		if r.Prioridad < mejor.Prioridad ||
			(r.Prioridad == mejor.Prioridad && r.CantidadMinima.GreaterThan(mejor.CantidadMinima)) {
			mejor = r
		}
	}
	return mejor, nil
}

func (f *fakePrecioRepo) BuscarPrecioEstacional(ctx context.Context, productoID int64, hoy time.Time) (*model.PrecioEstacional, error) {
	if f.reglaEstacional != nil && f.reglaEstacional.ProductoID == productoID {
		return f.reglaEstacional, nil
	}
	return nil, nil
}

func (f *fakePrecioRepo) GuardarPrecioAplicado(ctx context.Context, a *model.PrecioAplicado) error {
	a.ID = f.nextID
	f.nextID++
	f.aplicados = append(f.aplicados, a)
	return nil
}

func (f *fakePrecioRepo) ListarPreciosAplicados(ctx context.Context, ventaID int64) ([]*model.PrecioAplicado, error) {
	return f.aplicados, nil
}

func (f *fakePrecioRepo) RegistrarHistorial(ctx context.Context, h *model.PrecioHistorial) error {
	h.ID = f.nextID
	f.nextID++
	f.historial = append(f.historial, h)
	return nil
}

func (f *fakePrecioRepo) ListarHistorial(ctx context.Context, productoID *int64, skip, limit int) ([]*model.PrecioHistorial, error) {
	return f.historial, nil
}

func (f *fakePrecioRepo) ObtenerResumen(ctx context.Context) (*model.PrecioResumen, error) {
	return &model.PrecioResumen{}, nil
}

func (f *fakePrecioRepo) ObtenerEstadisticas(ctx context.Context) (*model.PrecioEstadisticas, error) {
	return &model.PrecioEstadisticas{}, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func int64Ptr(v int64) *int64 { return &v }

func reglaClienteEspecial(productoID int64, especial string) *model.PrecioProducto {
	return &model.PrecioProducto{
		ID:             10,
		ProductoID:     productoID,
		Tipo:           model.TipoCliente,
		PrecioEspecial: decPtr(especial),
		Activo:         true,
	}
}

func reglaVolumenPorcentaje(productoID int64, min string, pct string) *model.PrecioVolumen {
	return &model.PrecioVolumen{
		ID:                  20,
		ProductoID:          productoID,
		CantidadMinima:      dec(min),
		DescuentoPorcentaje: decPtr(pct),
		Prioridad:           1,
	}
}

// ============================================================================
// RESOLUCIÓN
// ============================================================================

func TestAplicarPrecioDinamico_PrecioBaseSinReglas(t *testing.T) {
	repo := newFakePrecioRepo()
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		Cantidad:   1,
		PrecioBase: 100,
	})
	require.NoError(t, err)

	assert.False(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("100")))
	assert.Equal(t, "Precio base aplicado", resp.Mensaje)
	assert.Nil(t, resp.TipoPrecio)
	assert.Nil(t, resp.DescuentoAplicado)
	// Sin ajuste no se documenta nada
	assert.Empty(t, repo.aplicados)
}

func TestAplicarPrecioDinamico_ClienteGanaSobreVolumen(t *testing.T) {
	repo := newFakePrecioRepo()
	repo.reglaCliente = reglaClienteEspecial(5, "80")
	repo.reglasVolumen = []*model.PrecioVolumen{reglaVolumenPorcentaje(5, "10", "50")}
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		ClienteID:  int64Ptr(7),
		Cantidad:   100,
		PrecioBase: 100,
	})
	require.NoError(t, err)

	assert.True(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("80")))
	require.NotNil(t, resp.TipoPrecio)
	assert.Equal(t, model.TipoCliente, *resp.TipoPrecio)
}

func TestAplicarPrecioDinamico_VolumenCuandoNoHayCliente(t *testing.T) {
	repo := newFakePrecioRepo()
	repo.reglasVolumen = []*model.PrecioVolumen{reglaVolumenPorcentaje(5, "10", "15")}
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		Cantidad:   10, // el tramo incluye ambos extremos
		PrecioBase: 100,
	})
	require.NoError(t, err)

	assert.True(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("85")))
	require.NotNil(t, resp.TipoPrecio)
	assert.Equal(t, model.TipoVolumen, *resp.TipoPrecio)
}

func TestAplicarPrecioDinamico_VolumenFueraDeTramo(t *testing.T) {
	repo := newFakePrecioRepo()
	max := dec("20")
	regla := reglaVolumenPorcentaje(5, "10", "15")
	regla.CantidadMaxima = &max
	repo.reglasVolumen = []*model.PrecioVolumen{regla}
	svc := NewPrecioService(repo, nil)

	// El extremo superior del tramo es inclusivo
	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		Cantidad:   20,
		PrecioBase: 100,
	})
	require.NoError(t, err)
	assert.True(t, resp.Aplicado)

	resp, err = svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		Cantidad:   21,
		PrecioBase: 100,
	})
	require.NoError(t, err)

	assert.False(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("100")))
}

func TestAplicarPrecioDinamico_EspecialSobreBaseSeSaltea(t *testing.T) {
	repo := newFakePrecioRepo()
	// Regla mal cargada: especial por encima del base
	repo.reglaCliente = reglaClienteEspecial(5, "120")
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		ClienteID:  int64Ptr(7),
		Cantidad:   1,
		PrecioBase: 100,
	})
	require.NoError(t, err)

	assert.False(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("100")))
}

func TestAplicarPrecioDinamico_PersisteUnSoloRegistro(t *testing.T) {
	repo := newFakePrecioRepo()
	repo.reglasVolumen = []*model.PrecioVolumen{reglaVolumenPorcentaje(5, "10", "10")}
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    33,
		ProductoID: 5,
		Cantidad:   10,
		PrecioBase: 50,
	})
	require.NoError(t, err)
	require.True(t, resp.Aplicado)

	require.Len(t, repo.aplicados, 1)
	a := repo.aplicados[0]
	assert.Equal(t, int64(33), a.VentaID)
	assert.True(t, a.PrecioFinal.Equal(dec("45")))
	assert.True(t, a.Subtotal.Equal(dec("450")))
	require.NotNil(t, a.PrecioTabla)
	assert.Equal(t, "precios_volumen", *a.PrecioTabla)
}

func TestSimularPrecio_NoPersisteNada(t *testing.T) {
	repo := newFakePrecioRepo()
	repo.reglasVolumen = []*model.PrecioVolumen{reglaVolumenPorcentaje(5, "10", "10")}
	svc := NewPrecioService(repo, nil)

	resp, err := svc.SimularPrecio(context.Background(), &model.SimularPrecioRequest{
		ProductoID: 5,
		Cantidad:   10,
		PrecioBase: 50,
	})
	require.NoError(t, err)

	assert.True(t, resp.Aplicado)
	assert.Empty(t, repo.aplicados)
	assert.Empty(t, repo.historial)
}

func TestAplicarPrecioDinamico_EstacionalComoUltimoRecurso(t *testing.T) {
	repo := newFakePrecioRepo()
	repo.reglaEstacional = &model.PrecioEstacional{
		ID:                  30,
		ProductoID:          5,
		NombreTemporada:     "verano",
		DescuentoPorcentaje: decPtr("5"),
	}
	svc := NewPrecioService(repo, nil)

	resp, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    1,
		ProductoID: 5,
		Cantidad:   1,
		PrecioBase: 200,
	})
	require.NoError(t, err)

	assert.True(t, resp.Aplicado)
	assert.True(t, resp.PrecioFinal.Equal(dec("190")))
	require.NotNil(t, resp.TipoPrecio)
	assert.Equal(t, model.TipoEstacional, *resp.TipoPrecio)
}

func TestAplicarPrecioDinamico_ValidaRequest(t *testing.T) {
	svc := NewPrecioService(newFakePrecioRepo(), nil)

	_, err := svc.AplicarPrecioDinamico(context.Background(), &model.AplicarPrecioRequest{
		VentaID:    0, // falta la venta
		ProductoID: 5,
		Cantidad:   1,
		PrecioBase: 100,
	})
	assert.Error(t, err)
}

// ============================================================================
// REGLAS
// ============================================================================

func TestCrearPrecioProducto_RegistraHistorial(t *testing.T) {
	repo := newFakePrecioRepo()
	svc := NewPrecioService(repo, nil)

	base := 100.0
	especial := 90.0
	req := &model.CrearPrecioProductoRequest{
		ProductoID:     5,
		Tipo:           string(model.TipoCliente),
		PrecioBase:     base,
		PrecioEspecial: &especial,
		ClienteID:      int64Ptr(7),
		FechaInicio:    time.Now().UTC().Format(time.RFC3339),
	}

	precio, err := svc.CrearPrecioProducto(context.Background(), req, int64Ptr(1))
	require.NoError(t, err)
	assert.NotZero(t, precio.ID)

	require.Len(t, repo.historial, 1)
	assert.Equal(t, "creacion", repo.historial[0].TipoCambio)
}

func TestActualizarPrecioProducto_CambiaEstado(t *testing.T) {
	repo := newFakePrecioRepo()
	svc := NewPrecioService(repo, nil)

	base := 100.0
	req := &model.CrearPrecioProductoRequest{
		ProductoID:  5,
		Tipo:        string(model.TipoPromocional),
		PrecioBase:  base,
		FechaInicio: time.Now().UTC().Format(time.RFC3339),
	}
	precio, err := svc.CrearPrecioProducto(context.Background(), req, nil)
	require.NoError(t, err)

	estado := string(model.EstadoInactivo)
	actualizado, err := svc.ActualizarPrecioProducto(context.Background(), precio.ID, &model.ActualizarPrecioProductoRequest{
		Estado: &estado,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.EstadoInactivo, actualizado.Estado)
	assert.False(t, actualizado.Activo)
	// creación + actualización
	assert.Len(t, repo.historial, 2)
}
