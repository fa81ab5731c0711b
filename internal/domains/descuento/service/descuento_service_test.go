package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercial-backend/internal/domains/descuento/model"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeDescuentoRepo struct {
	mu         sync.Mutex
	descuentos map[int64]*model.Descuento
	usos       []*model.DescuentoUso
	usosPorCli map[int64]map[int64]int
	barrido    *model.ResultadoBarrido
	nextID     int64
}

func newFakeDescuentoRepo() *fakeDescuentoRepo {
	return &fakeDescuentoRepo{
		descuentos: make(map[int64]*model.Descuento),
		usosPorCli: make(map[int64]map[int64]int),
		nextID:     1,
	}
}

func (f *fakeDescuentoRepo) agregar(d *model.Descuento) *model.Descuento {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.nextID
	f.nextID++
	f.descuentos[d.ID] = d
	return d
}

func (f *fakeDescuentoRepo) Crear(ctx context.Context, d *model.Descuento) (*model.Descuento, error) {
	return f.agregar(d), nil
}

func (f *fakeDescuentoRepo) Obtener(ctx context.Context, id int64) (*model.Descuento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.descuentos[id]
	if !ok {
		return nil, model.ErrDescuentoNotFound
	}
	return d, nil
}

func (f *fakeDescuentoRepo) ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Descuento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.descuentos {
		if d.Codigo == codigo {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDescuentoRepo) Listar(ctx context.Context, filtros *model.DescuentoFiltros, skip, limit int) ([]*model.Descuento, error) {
	out := []*model.Descuento{}
	for _, d := range f.descuentos {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDescuentoRepo) Actualizar(ctx context.Context, d *model.Descuento) (*model.Descuento, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.descuentos[d.ID]; !ok {
		return nil, model.ErrDescuentoNotFound
	}
	f.descuentos[d.ID] = d
	return d, nil
}

// RegistrarUso imita la UPDATE condicional: consume un cupo bajo lock y
// rechaza con ErrDescuentoAgotado cuando el contador llegó al límite.
func (f *fakeDescuentoRepo) RegistrarUso(ctx context.Context, uso *model.DescuentoUso) (*model.DescuentoUso, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.descuentos[uso.DescuentoID]
	if !ok {
		return nil, model.ErrDescuentoNotFound
	}
	if d.LimiteUsos != nil && d.UsosActuales >= *d.LimiteUsos {
		return nil, model.ErrDescuentoAgotado
	}

	d.UsosActuales++
	if d.LimiteUsos != nil && d.UsosActuales >= *d.LimiteUsos {
		d.Estado = model.EstadoAgotado
		d.EsActivo = false
	}

	uso.ID = int64(len(f.usos) + 1)
	uso.FechaUso = time.Now().UTC()
	f.usos = append(f.usos, uso)

	if uso.ClienteID != nil {
		if f.usosPorCli[uso.DescuentoID] == nil {
			f.usosPorCli[uso.DescuentoID] = make(map[int64]int)
		}
		f.usosPorCli[uso.DescuentoID][*uso.ClienteID]++
	}

	return uso, nil
}

func (f *fakeDescuentoRepo) ListarUsos(ctx context.Context, descuentoID int64, skip, limit int) ([]*model.DescuentoUso, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usos, nil
}

func (f *fakeDescuentoRepo) ContarUsosCliente(ctx context.Context, descuentoID, clienteID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usosPorCli[descuentoID][clienteID], nil
}

func (f *fakeDescuentoRepo) ObtenerEstadisticas(ctx context.Context) (*model.DescuentoEstadisticas, error) {
	return &model.DescuentoEstadisticas{}, nil
}

func (f *fakeDescuentoRepo) ActualizarEstados(ctx context.Context) (*model.ResultadoBarrido, error) {
	if f.barrido != nil {
		return f.barrido, nil
	}
	return &model.ResultadoBarrido{}, nil
}

func (f *fakeDescuentoRepo) CrearPromocion(ctx context.Context, p *model.Promocion) (*model.Promocion, error) {
	p.ID = 1
	return p, nil
}

func (f *fakeDescuentoRepo) ListarPromociones(ctx context.Context, soloActivas bool, skip, limit int) ([]*model.Promocion, error) {
	return nil, nil
}

// fakeCache guarda descuentos por key y cuenta hits para verificar el flujo
type fakeCache struct {
	mu       sync.Mutex
	datos    map[string]*model.Descuento
	hits     int
	deletes  []string
	patterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{datos: make(map[string]*model.Descuento)}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.datos[key]
	if !ok {
		return false, nil
	}
	c.hits++
	if out, ok := dest.(*model.Descuento); ok {
		*out = *d
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := value.(*model.Descuento); ok {
		copia := *d
		c.datos[key] = &copia
	}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.datos, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	c.datos = make(map[string]*model.Descuento)
	return nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }

// ============================================================================
// HELPERS
// ============================================================================

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int     { return &v }
func i64Ptr(v int64) *int64 { return &v }

func cuponBase(codigo string) *model.Descuento {
	return &model.Descuento{
		Codigo:      codigo,
		Nombre:      "Cupón de prueba",
		Tipo:        model.TipoPorcentaje,
		Valor:       dec("10"),
		FechaInicio: time.Now().UTC().Add(-time.Hour),
		Estado:      model.EstadoActivo,
		EsActivo:    true,
	}
}

func nuevoServicio(repo *fakeDescuentoRepo) ServiceInterface {
	return NewDescuentoService(repo, nil, 0, nil)
}

func aplicar(t *testing.T, svc ServiceInterface, req *model.AplicarDescuentoRequest) *model.DescuentoResultado {
	t.Helper()
	res, err := svc.AplicarDescuento(context.Background(), req)
	require.NoError(t, err)
	return res
}

// ============================================================================
// VALIDACIÓN DEL CUPÓN
// ============================================================================

func TestAplicarDescuento_CodigoNoEncontrado(t *testing.T) {
	svc := nuevoServicio(newFakeDescuentoRepo())

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "NOEXISTE", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "Código de descuento no encontrado", res.Mensaje)
	assert.True(t, res.MontoFinal.Equal(dec("100")))
	assert.Nil(t, res.MontoDescuento)
}

func TestAplicarDescuento_NoActivo(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("PROMO10")
	d.EsActivo = false
	d.Estado = model.EstadoInactivo
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "PROMO10", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento no está activo", res.Mensaje)
}

func TestAplicarDescuento_AunNoDisponible(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("FUTURO")
	d.FechaInicio = time.Now().UTC().Add(24 * time.Hour)
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "FUTURO", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento aún no está disponible", res.Mensaje)
}

func TestAplicarDescuento_Expirado(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("VIEJO")
	fin := time.Now().UTC().Add(-time.Minute)
	d.FechaFin = &fin
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "VIEJO", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento ha expirado", res.Mensaje)
}

func TestAplicarDescuento_LimiteDeUsos(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("TOPE")
	d.LimiteUsos = intPtr(5)
	d.UsosActuales = 5
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "TOPE", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento ha alcanzado su límite de usos", res.Mensaje)
}

func TestAplicarDescuento_CompraMinima(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("MIN500")
	d.ValorMinimo = decPtr("500")
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "MIN500", MontoTotal: 499.99, ProductosIDs: []int64{1},
	})

	assert.False(t, res.Aplicable)
	assert.Equal(t, "Compra mínima requerida: $500.00", res.Mensaje)
}

func TestAplicarDescuento_RestriccionDeProductos(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("SOLOLIBROS")
	d.ProductosIDs = []int64{7, 8}
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "SOLOLIBROS", MontoTotal: 100, ProductosIDs: []int64{1, 2},
	})
	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento no aplica para estos productos", res.Mensaje)

	// Basta con que un producto del carrito esté permitido
	res = aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "SOLOLIBROS", MontoTotal: 100, ProductosIDs: []int64{1, 8},
	})
	assert.True(t, res.Aplicable)
}

func TestAplicarDescuento_RestriccionDeClientes(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("VIP")
	d.ClientesIDs = []int64{42}
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "VIP", MontoTotal: 100, ProductosIDs: []int64{1}, ClienteID: i64Ptr(99),
	})
	assert.False(t, res.Aplicable)
	assert.Equal(t, "El descuento no aplica para este cliente", res.Mensaje)

	res = aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "VIP", MontoTotal: 100, ProductosIDs: []int64{1}, ClienteID: i64Ptr(42),
	})
	assert.True(t, res.Aplicable)
}

func TestAplicarDescuento_LimitePorCliente(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("UNAVEZ")
	d.UsosPorCliente = intPtr(1)
	creado := repo.agregar(d)
	repo.usosPorCli[creado.ID] = map[int64]int{42: 1}
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "UNAVEZ", MontoTotal: 100, ProductosIDs: []int64{1}, ClienteID: i64Ptr(42),
	})
	assert.False(t, res.Aplicable)
	assert.Equal(t, "El cliente ya alcanzó el límite de usos de este descuento", res.Mensaje)

	// Otro cliente todavía puede usarlo
	res = aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "UNAVEZ", MontoTotal: 100, ProductosIDs: []int64{1}, ClienteID: i64Ptr(7),
	})
	assert.True(t, res.Aplicable)
}

// ============================================================================
// CÁLCULO
// ============================================================================

func TestAplicarDescuento_Porcentaje(t *testing.T) {
	repo := newFakeDescuentoRepo()
	repo.agregar(cuponBase("PROMO10"))
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "PROMO10", MontoTotal: 250, ProductosIDs: []int64{1},
	})

	require.True(t, res.Aplicable)
	assert.Equal(t, "Descuento aplicado correctamente", res.Mensaje)
	require.NotNil(t, res.MontoDescuento)
	assert.True(t, res.MontoDescuento.Equal(dec("25")))
	assert.True(t, res.MontoFinal.Equal(dec("225")))
}

func TestAplicarDescuento_MontoFijoNoSuperaElTotal(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("FIJO50")
	d.Tipo = model.TipoMontoFijo
	d.Valor = dec("50")
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "FIJO50", MontoTotal: 30, ProductosIDs: []int64{1},
	})

	require.True(t, res.Aplicable)
	assert.True(t, res.MontoDescuento.Equal(dec("30")))
	assert.True(t, res.MontoFinal.Equal(decimal.Zero))
}

func TestAplicarDescuento_VolumenBajoUmbralNoDescuenta(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("MAYORISTA")
	d.Tipo = model.TipoDescuentoVolumen
	d.Valor = dec("20")
	d.ValorMinimo = decPtr("1000")
	repo.agregar(d)
	svc := nuevoServicio(repo)

	// Por debajo del umbral ni siquiera pasa la compra mínima
	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "MAYORISTA", MontoTotal: 999, ProductosIDs: []int64{1},
	})
	assert.False(t, res.Aplicable)

	res = aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "MAYORISTA", MontoTotal: 1000, ProductosIDs: []int64{1},
	})
	require.True(t, res.Aplicable)
	assert.True(t, res.MontoDescuento.Equal(dec("200")))
}

func TestAplicarDescuento_TopeDeValorMaximo(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("CAP")
	d.Valor = dec("50")
	d.ValorMaximo = decPtr("100")
	repo.agregar(d)
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "CAP", MontoTotal: 1000, ProductosIDs: []int64{1},
	})

	require.True(t, res.Aplicable)
	assert.True(t, res.MontoDescuento.Equal(dec("100")))
	assert.True(t, res.MontoFinal.Equal(dec("900")))
}

func TestAplicarDescuento_CodigoSeNormaliza(t *testing.T) {
	repo := newFakeDescuentoRepo()
	repo.agregar(cuponBase("PROMO10"))
	svc := nuevoServicio(repo)

	res := aplicar(t, svc, &model.AplicarDescuentoRequest{
		Codigo: "  promo10 ", MontoTotal: 100, ProductosIDs: []int64{1},
	})

	assert.True(t, res.Aplicable)
}

// ============================================================================
// CACHE
// ============================================================================

func TestObtenerDescuentoPorCodigo_CacheaTrasElPrimerMiss(t *testing.T) {
	repo := newFakeDescuentoRepo()
	repo.agregar(cuponBase("PROMO10"))
	c := newFakeCache()
	svc := NewDescuentoService(repo, c, time.Minute, nil)

	d, err := svc.ObtenerDescuentoPorCodigo(context.Background(), "promo10")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 0, c.hits)

	d, err = svc.ObtenerDescuentoPorCodigo(context.Background(), "PROMO10")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 1, c.hits)
}

func TestRegistrarUso_InvalidaElCache(t *testing.T) {
	repo := newFakeDescuentoRepo()
	repo.agregar(cuponBase("PROMO10"))
	c := newFakeCache()
	svc := NewDescuentoService(repo, c, time.Minute, nil)

	_, err := svc.ObtenerDescuentoPorCodigo(context.Background(), "PROMO10")
	require.NoError(t, err)

	_, err = svc.RegistrarUso(context.Background(), &model.RegistrarUsoRequest{
		DescuentoID: 1, MontoOriginal: 100, MontoDescuento: 10, MontoFinal: 90,
	}, nil)
	require.NoError(t, err)

	assert.Contains(t, c.deletes, "descuento:codigo:PROMO10")
}

// ============================================================================
// REGISTRO DE USO
// ============================================================================

func TestRegistrarUso_AgotaElCupon(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("ULTIMO")
	d.LimiteUsos = intPtr(1)
	creado := repo.agregar(d)
	svc := nuevoServicio(repo)

	_, err := svc.RegistrarUso(context.Background(), &model.RegistrarUsoRequest{
		DescuentoID: creado.ID, MontoOriginal: 100, MontoDescuento: 10, MontoFinal: 90,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, model.EstadoAgotado, creado.Estado)
	assert.False(t, creado.EsActivo)

	_, err = svc.RegistrarUso(context.Background(), &model.RegistrarUsoRequest{
		DescuentoID: creado.ID, MontoOriginal: 100, MontoDescuento: 10, MontoFinal: 90,
	}, nil)
	assert.ErrorIs(t, err, model.ErrDescuentoAgotado)
}

func TestRegistrarUso_ConcurrenciaNoSobrevendeCupos(t *testing.T) {
	repo := newFakeDescuentoRepo()
	d := cuponBase("CARRERA")
	d.LimiteUsos = intPtr(7)
	creado := repo.agregar(d)
	svc := nuevoServicio(repo)

	const intentos = 8
	errores := make(chan error, intentos)
	var wg sync.WaitGroup

	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegistrarUso(context.Background(), &model.RegistrarUsoRequest{
				DescuentoID: creado.ID, MontoOriginal: 100, MontoDescuento: 10, MontoFinal: 90,
			}, nil)
			errores <- err
		}()
	}
	wg.Wait()
	close(errores)

	exitos, agotados := 0, 0
	for err := range errores {
		switch {
		case err == nil:
			exitos++
		case assert.ErrorIs(t, err, model.ErrDescuentoAgotado):
			agotados++
		}
	}

	assert.Equal(t, 7, exitos)
	assert.Equal(t, 1, agotados)
	assert.Len(t, repo.usos, 7)
	assert.Equal(t, 7, creado.UsosActuales)
	assert.Equal(t, model.EstadoAgotado, creado.Estado)
}

// ============================================================================
// BARRIDO DE ESTADOS
// ============================================================================

func TestActualizarEstadosDescuentos_InvalidaCacheSoloConCambios(t *testing.T) {
	repo := newFakeDescuentoRepo()
	repo.barrido = &model.ResultadoBarrido{Expirados: 2, Reactivados: 1, Total: 3}
	c := newFakeCache()
	svc := NewDescuentoService(repo, c, time.Minute, nil)

	res, err := svc.ActualizarEstadosDescuentos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Expirados)
	assert.Equal(t, []string{"descuento:codigo:*"}, c.patterns)

	// Sin cambios no hay nada que invalidar
	repo.barrido = &model.ResultadoBarrido{}
	c.patterns = nil
	_, err = svc.ActualizarEstadosDescuentos(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.patterns)
}

// ============================================================================
// CREACIÓN
// ============================================================================

func TestCrearDescuento_NormalizaYActiva(t *testing.T) {
	repo := newFakeDescuentoRepo()
	svc := nuevoServicio(repo)

	d, err := svc.CrearDescuento(context.Background(), &model.CrearDescuentoRequest{
		Codigo:      "promo10",
		Nombre:      "Promo de lanzamiento",
		Tipo:        model.TipoPorcentaje,
		Valor:       10,
		FechaInicio: time.Now().UTC().Format(time.RFC3339),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "PROMO10", d.Codigo)
	assert.Equal(t, model.EstadoActivo, d.Estado)
	assert.True(t, d.EsActivo)
	assert.True(t, d.AplicaImpuestos)
}

func TestCrearDescuento_RechazaPorcentajeInvalido(t *testing.T) {
	svc := nuevoServicio(newFakeDescuentoRepo())

	_, err := svc.CrearDescuento(context.Background(), &model.CrearDescuentoRequest{
		Codigo:      "MALO",
		Nombre:      "Porcentaje imposible",
		Tipo:        model.TipoPorcentaje,
		Valor:       150,
		FechaInicio: time.Now().UTC().Format(time.RFC3339),
	}, nil)

	assert.Error(t, err)
}
