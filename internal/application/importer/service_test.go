package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
)

const sampleDump = "CREATE TABLE `articulos` (\n" +
	"  `id` int(11) NOT NULL,\n" +
	"  `descripcion` varchar(120) NOT NULL,\n" +
	"  `precio_venta` decimal(10,2) NOT NULL,\n" +
	"  `existencia` int(11) DEFAULT 0,\n" +
	"  PRIMARY KEY (`id`)\n" +
	");\n" +
	"CREATE TABLE `clientes` (\n" +
	"  `id` int(11) NOT NULL,\n" +
	"  `nombre` varchar(80) NOT NULL\n" +
	");\n" +
	"INSERT INTO `articulos` (`id`, `descripcion`, `precio_venta`, `existencia`) VALUES\n" +
	"(1, 'Arroz Grado 2', 990.00, 50),\n" +
	"(2, 'Pan Marraqueta', 400.00, 120),\n" +
	"(3, 'Leche Entera', 1190.00, 30);\n"

type bulkCall struct {
	table   string
	columns []string
	rows    [][]string
}

type fakeInserter struct {
	calls []bulkCall
}

func (f *fakeInserter) BulkInsert(_ context.Context, table string, columns []string, rows [][]string) (int64, error) {
	f.calls = append(f.calls, bulkCall{table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func newServiceForTest(t *testing.T) (*Service, *fakeInserter) {
	t.Helper()
	inserter := &fakeInserter{}
	svc, err := NewService(t.TempDir(), inserter)
	require.NoError(t, err)
	return svc, inserter
}

func productMapping(uploadID string) dto.MappingRequest {
	return dto.MappingRequest{
		UploadID:    uploadID,
		SourceTable: "articulos",
		DestTable:   "producto",
		Mapping: map[string]string{
			"nombre":     "descripcion",
			"precio":     "precio_venta",
			"stock":      "existencia",
			"id_empresa": "__static",
		},
		StaticValues: map[string]string{"id_empresa": "7"},
	}
}

func TestTables_ParseaCreateTable(t *testing.T) {
	svc, _ := newServiceForTest(t)
	up, err := svc.Upload([]byte(sampleDump))
	require.NoError(t, err)

	tables, err := svc.Tables(up.UploadID)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	assert.Equal(t, "articulos", tables[0].Name)
	assert.Equal(t, []string{"id", "descripcion", "precio_venta", "existencia"}, tables[0].Columns,
		"PRIMARY KEY no es una columna")
	assert.Equal(t, "clientes", tables[1].Name)
}

func TestPreview_AplicaMapeoYEstaticos(t *testing.T) {
	svc, _ := newServiceForTest(t)
	up, err := svc.Upload([]byte(sampleDump))
	require.NoError(t, err)

	out, err := svc.Preview(productMapping(up.UploadID))
	require.NoError(t, err)
	require.Len(t, out.Preview, 3)

	first := out.Preview[0]
	assert.Equal(t, "Arroz Grado 2", first["nombre"])
	assert.Equal(t, "990.00", first["precio"])
	assert.Equal(t, "50", first["stock"])
	assert.Equal(t, "7", first["id_empresa"], "valor estático del mapeo")
}

func TestApply_InsertaYBorraElDump(t *testing.T) {
	svc, inserter := newServiceForTest(t)
	up, err := svc.Upload([]byte(sampleDump))
	require.NoError(t, err)

	out, err := svc.Apply(context.Background(), productMapping(up.UploadID))
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Inserted)

	require.Len(t, inserter.calls, 1)
	call := inserter.calls[0]
	assert.Equal(t, "producto", call.table)
	assert.Equal(t, []string{"id_empresa", "nombre", "precio", "stock"}, call.columns,
		"columnas en orden estable")
	require.Len(t, call.rows, 3)
	assert.Equal(t, []string{"7", "Pan Marraqueta", "400.00", "120"}, call.rows[1])

	// El dump ya no existe: un segundo apply falla.
	_, err = svc.Apply(context.Background(), productMapping(up.UploadID))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpload_DumpVacio(t *testing.T) {
	svc, _ := newServiceForTest(t)

	_, err := svc.Upload(nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTables_UploadIDInvalido(t *testing.T) {
	svc, _ := newServiceForTest(t)

	_, err := svc.Tables("../../etc/passwd")
	require.ErrorIs(t, err, domain.ErrInvalidInput,
		"el uploadId debe ser un UUID, no una ruta")
}

func TestPreview_MapeoIncompleto(t *testing.T) {
	svc, _ := newServiceForTest(t)
	up, err := svc.Upload([]byte(sampleDump))
	require.NoError(t, err)

	_, err = svc.Preview(dto.MappingRequest{UploadID: up.UploadID})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreview_TablaOrigenSinInserts(t *testing.T) {
	svc, _ := newServiceForTest(t)
	up, err := svc.Upload([]byte(sampleDump))
	require.NoError(t, err)

	req := productMapping(up.UploadID)
	req.SourceTable = "clientes"

	out, err := svc.Preview(req)
	require.NoError(t, err)
	assert.Empty(t, out.Preview)
}
