package dto

// UploadResponse identificador del dump SQL subido.
type UploadResponse struct {
	UploadID string `json:"uploadId"`
}

// ParsedTable tabla detectada en el dump con sus columnas.
type ParsedTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// MappingRequest mapeo de columnas origen a destino para preview/apply.
// Mapping asocia columna destino -> columna origen; el valor especial
// "__static" toma el valor fijo de StaticValues.
type MappingRequest struct {
	UploadID     string            `json:"uploadId"`
	SourceTable  string            `json:"sourceTable"`
	DestTable    string            `json:"destTable"`
	Mapping      map[string]string `json:"mapping"`
	StaticValues map[string]string `json:"staticValues"`
}

// PreviewResponse primeras filas resultantes del mapeo.
type PreviewResponse struct {
	Preview []map[string]string `json:"preview"`
}

// ApplyResponse resultado de la importación.
type ApplyResponse struct {
	Inserted int64 `json:"inserted"`
}
