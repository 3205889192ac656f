package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
)

// Valor especial de mapeo: la columna destino toma un valor fijo en vez de
// leerse del dump (ej: id_empresa al importar el catálogo de otra empresa).
const staticSource = "__static"

// BulkInserter puerto de inserción masiva hacia la base destino.
type BulkInserter interface {
	BulkInsert(ctx context.Context, table string, columns []string, rows [][]string) (int64, error)
}

// Service importa dumps SQL (MySQL/MariaDB u otro POS) mapeando columnas del
// origen a las tablas propias. El dump nunca se ejecuta: se parsea con regex y
// las filas entran por INSERT parametrizado.
type Service struct {
	uploadsDir string
	inserter   BulkInserter
}

// NewService construye el servicio. Crea el directorio de trabajo si no existe.
func NewService(uploadsDir string, inserter BulkInserter) (*Service, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("importer: crear %s: %w", uploadsDir, err)
	}
	return &Service{uploadsDir: uploadsDir, inserter: inserter}, nil
}

var (
	createTableRe = regexp.MustCompile("(?i)CREATE TABLE\\s+`?(\\w+)`?\\s*\\(([\\s\\S]*?)\\)\\s*;")
	columnRe      = regexp.MustCompile("(?m)^\\s*`?(\\w+)`?\\s+\\w+")
	tupleRe       = regexp.MustCompile(`\(([^)]+)\)`)
)

// Palabras clave SQL que el regex de columnas captura pero no son columnas.
var sqlKeywords = map[string]bool{
	"PRIMARY": true, "FOREIGN": true, "KEY": true,
	"CONSTRAINT": true, "UNIQUE": true, "INDEX": true,
}

// Upload guarda el dump y devuelve su identificador.
func (s *Service) Upload(content []byte) (*dto.UploadResponse, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("dump vacío: %w", domain.ErrInvalidInput)
	}
	uploadID := uuid.NewString()
	if err := os.WriteFile(s.sqlPath(uploadID), content, 0o644); err != nil {
		return nil, fmt.Errorf("importer: guardar dump: %w", err)
	}
	log.Info().Str("upload_id", uploadID).Int("bytes", len(content)).Msg("dump SQL recibido")
	return &dto.UploadResponse{UploadID: uploadID}, nil
}

// Tables devuelve las tablas del dump con sus columnas (de los CREATE TABLE).
func (s *Service) Tables(uploadID string) ([]dto.ParsedTable, error) {
	content, err := s.readDump(uploadID)
	if err != nil {
		return nil, err
	}

	var tables []dto.ParsedTable
	for _, m := range createTableRe.FindAllStringSubmatch(content, -1) {
		name, body := m[1], m[2]
		var columns []string
		for _, cm := range columnRe.FindAllStringSubmatch(body, -1) {
			col := cm[1]
			if sqlKeywords[strings.ToUpper(col)] {
				continue
			}
			columns = append(columns, col)
		}
		tables = append(tables, dto.ParsedTable{Name: name, Columns: columns})
	}
	return tables, nil
}

// Preview aplica el mapeo sobre las primeras filas de cada INSERT del dump.
func (s *Service) Preview(req dto.MappingRequest) (*dto.PreviewResponse, error) {
	rows, err := s.mappedRows(req, 5)
	if err != nil {
		return nil, err
	}
	return &dto.PreviewResponse{Preview: rows}, nil
}

// Apply importa todas las filas mapeadas a la tabla destino y borra el dump.
func (s *Service) Apply(ctx context.Context, req dto.MappingRequest) (*dto.ApplyResponse, error) {
	rows, err := s.mappedRows(req, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &dto.ApplyResponse{Inserted: 0}, nil
	}

	// Orden estable de columnas destino para el INSERT.
	columns := make([]string, 0, len(req.Mapping))
	for dest := range req.Mapping {
		columns = append(columns, dest)
	}
	sort.Strings(columns)

	values := make([][]string, 0, len(rows))
	for _, row := range rows {
		tuple := make([]string, len(columns))
		for i, col := range columns {
			tuple[i] = row[col]
		}
		values = append(values, tuple)
	}

	inserted, err := s.inserter.BulkInsert(ctx, req.DestTable, columns, values)
	if err != nil {
		return nil, fmt.Errorf("importer: insertar en %s: %w", req.DestTable, err)
	}

	if err := os.Remove(s.sqlPath(req.UploadID)); err != nil {
		log.Warn().Err(err).Str("upload_id", req.UploadID).Msg("no se pudo borrar el dump importado")
	}
	log.Info().
		Str("upload_id", req.UploadID).
		Str("dest_table", req.DestTable).
		Int64("inserted", inserted).
		Msg("importación aplicada")
	return &dto.ApplyResponse{Inserted: inserted}, nil
}

// mappedRows extrae los INSERT de la tabla origen y aplica el mapeo.
// maxRows 0 = sin tope.
func (s *Service) mappedRows(req dto.MappingRequest, maxRows int) ([]map[string]string, error) {
	if req.SourceTable == "" || req.DestTable == "" || len(req.Mapping) == 0 {
		return nil, fmt.Errorf("mapeo incompleto: %w", domain.ErrInvalidInput)
	}
	content, err := s.readDump(req.UploadID)
	if err != nil {
		return nil, err
	}

	insertRe, err := regexp.Compile(
		"(?is)INSERT INTO\\s+`?" + regexp.QuoteMeta(req.SourceTable) + "`?\\s*\\(([^)]+)\\)\\s*VALUES\\s*(.+?);",
	)
	if err != nil {
		return nil, fmt.Errorf("importer: tabla origen inválida: %w", domain.ErrInvalidInput)
	}

	var out []map[string]string
	for _, m := range insertRe.FindAllStringSubmatch(content, -1) {
		cols := splitTrimmed(m[1])
		for _, t := range tupleRe.FindAllStringSubmatch(m[2], -1) {
			if maxRows > 0 && len(out) >= maxRows {
				return out, nil
			}
			vals := splitTrimmed(t[1])
			row := make(map[string]string, len(req.Mapping))
			for dest, src := range req.Mapping {
				switch {
				case src == staticSource:
					row[dest] = req.StaticValues[dest]
				case src != "":
					if idx := indexOf(cols, src); idx >= 0 && idx < len(vals) {
						row[dest] = vals[idx]
					}
				}
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Service) sqlPath(uploadID string) string {
	// uuid.Parse rechaza separadores de ruta; el filepath.Base es cinturón extra.
	return filepath.Join(s.uploadsDir, filepath.Base(uploadID)+".sql")
}

func (s *Service) readDump(uploadID string) (string, error) {
	if _, err := uuid.Parse(uploadID); err != nil {
		return "", fmt.Errorf("uploadId inválido: %w", domain.ErrInvalidInput)
	}
	raw, err := os.ReadFile(s.sqlPath(uploadID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("upload %s: %w", uploadID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("importer: leer dump: %w", err)
	}
	return string(raw), nil
}

// splitTrimmed separa por comas y limpia comillas simples, backticks y espacios.
func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, "`")
		p = strings.Trim(p, "'")
		out = append(out, p)
	}
	return out
}

func indexOf(list []string, target string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}
