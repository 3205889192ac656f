package dte

import (
	"context"

	"github.com/miposra/pos-api/internal/application/folios"
)

// Estructuras del JSON "input" que espera el firmador (SimpleAPI).
// Los nombres de campo siguen el esquema DTE del SII, por eso van en PascalCase.

// BoletaRequest documento completo a firmar más las credenciales del certificado.
type BoletaRequest struct {
	Documento   Documento   `json:"Documento"`
	Certificado Certificado `json:"Certificado"`
}

// Documento encabezado, detalle y referencias de la boleta.
type Documento struct {
	Encabezado  Encabezado   `json:"Encabezado"`
	Detalles    []Detalle    `json:"Detalles"`
	Referencias []Referencia `json:"Referencia"`
}

// Encabezado identificación, emisor, receptor y totales.
type Encabezado struct {
	IdentificacionDTE IdentificacionDTE `json:"IdentificacionDTE"`
	Emisor            Emisor            `json:"Emisor"`
	Receptor          Receptor          `json:"Receptor"`
	Totales           Totales           `json:"Totales"`
}

// IdentificacionDTE tipo, folio y fecha del documento.
type IdentificacionDTE struct {
	TipoDTE           int    `json:"TipoDTE"`
	Folio             int64  `json:"Folio"`
	FechaEmision      string `json:"FechaEmision"` // YYYY-MM-DD
	IndicadorServicio int    `json:"IndicadorServicio"`
}

// Emisor datos del contribuyente que emite.
type Emisor struct {
	Rut               string `json:"Rut"`
	RazonSocialBoleta string `json:"RazonSocialBoleta"`
	GiroBoleta        string `json:"GiroBoleta"`
	DireccionOrigen   string `json:"DireccionOrigen"`
	ComunaOrigen      string `json:"ComunaOrigen"`
}

// Receptor datos del receptor. En boletas de consumo se usa el receptor genérico.
type Receptor struct {
	Rut         string `json:"Rut"`
	RazonSocial string `json:"RazonSocial"`
	Direccion   string `json:"Direccion"`
	Comuna      string `json:"Comuna"`
}

// Totales montos del documento (pesos enteros).
type Totales struct {
	MontoTotal int64 `json:"MontoTotal"`
}

// Detalle una línea del documento.
type Detalle struct {
	NroLinDet int     `json:"NroLinDet"`
	Nombre    string  `json:"Nombre"`
	Cantidad  float64 `json:"Cantidad"`
	Precio    int64   `json:"Precio"`
	MontoItem int64   `json:"MontoItem"`
	IndExe    int    `json:"IndExe,omitempty"`   // 1 = exento de IVA
	UnmdItem  string `json:"UnmdItem,omitempty"` // unidad de medida
}

// Referencia referencia a otro documento. Para los sets de prueba del SII se
// usa TpoDocRef "SET" con el nombre del caso.
type Referencia struct {
	NroLinRef int    `json:"NroLinRef"`
	TpoDocRef string `json:"TpoDocRef"`
	FolioRef  string `json:"FolioRef"`
	RazonRef  string `json:"RazonRef"`
}

// Certificado credenciales del certificado digital del emisor.
type Certificado struct {
	Rut      string `json:"Rut"`
	Password string `json:"Password"`
}

// SignResult respuesta del firmador.
type SignResult struct {
	Folio  int64
	Timbre string // TED en base64, va impreso como PDF417 en el ticket
	XML    string // DTE firmado
}

// Signer es el puerto hacia el firmador externo. El cafXML debe enviarse tal
// cual se recibió del SII: la firma del CAF cubre el documento byte a byte.
type Signer interface {
	Sign(ctx context.Context, boleta *BoletaRequest, cafXML string) (*SignResult, error)
}

// FolioAllocator es el puerto hacia el dispensador de folios.
type FolioAllocator interface {
	Allocate(ctx context.Context, companyID int64, documentType int) (*folios.Allocation, error)
}
