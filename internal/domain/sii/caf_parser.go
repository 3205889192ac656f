package sii

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/miposra/pos-api/internal/domain"
)

// CafDescriptor es el resultado de parsear un archivo CAF del SII.
// NormalizedArtifact es el XML ya normalizado: es lo que se persiste y lo que
// se reenvía byte a byte al firmador.
type CafDescriptor struct {
	DocumentType       int    // DA/TD
	RangeStart         int64  // DA/RNG/D
	RangeEnd           int64  // DA/RNG/H
	IssuerRUT          string // DA/RE, RUT del emisor autorizado
	IssuerName         string // DA/RS, razón social declarada en el CAF
	AuthorizationDate  string // DA/FA (YYYY-MM-DD)
	NormalizedArtifact string
}

// ParseCaf parsea el XML de autorización de folios del SII
// (<AUTORIZACION><CAF version="1.0"><DA>...</DA>...</CAF>...</AUTORIZACION>).
// No tiene efectos secundarios; es seguro llamarlo concurrentemente.
// Devuelve domain.ErrCafMalformed (envuelto con el detalle) si faltan campos,
// hay valores no numéricos o el rango viene invertido.
func ParseCaf(raw string) (*CafDescriptor, error) {
	normalized := NormalizeArtifact(raw)
	if strings.TrimSpace(normalized) == "" {
		return nil, fmt.Errorf("%w: documento vacío", domain.ErrCafMalformed)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(normalized); err != nil {
		return nil, fmt.Errorf("%w: XML mal formado: %v", domain.ErrCafMalformed, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "AUTORIZACION" {
		return nil, fmt.Errorf("%w: falta elemento raíz AUTORIZACION", domain.ErrCafMalformed)
	}
	da := root.FindElement("CAF/DA")
	if da == nil {
		return nil, fmt.Errorf("%w: falta bloque CAF/DA", domain.ErrCafMalformed)
	}

	issuerRUT, err := requiredText(da, "RE")
	if err != nil {
		return nil, err
	}
	docType, err := requiredInt(da, "TD")
	if err != nil {
		return nil, err
	}
	rangeStart, err := requiredInt64(da, "RNG/D")
	if err != nil {
		return nil, err
	}
	rangeEnd, err := requiredInt64(da, "RNG/H")
	if err != nil {
		return nil, err
	}
	if rangeStart > rangeEnd {
		return nil, fmt.Errorf("%w: rango invertido (%d > %d)", domain.ErrCafMalformed, rangeStart, rangeEnd)
	}

	desc := &CafDescriptor{
		DocumentType:       docType,
		RangeStart:         rangeStart,
		RangeEnd:           rangeEnd,
		IssuerRUT:          issuerRUT,
		NormalizedArtifact: normalized,
	}
	if rs := da.FindElement("RS"); rs != nil {
		desc.IssuerName = strings.TrimSpace(rs.Text())
	}
	if fa := da.FindElement("FA"); fa != nil {
		desc.AuthorizationDate = strings.TrimSpace(fa.Text())
	}
	return desc, nil
}

// NormalizeArtifact corrige anomalías de transporte en el XML del CAF:
// algunos uploads llegan con saltos de línea doblemente escapados ("\\n"
// literal) o con CRLF. Normaliza todo a "\n" y descarta el BOM si existe,
// para que la comparación byte a byte y el reenvío al firmador sean estables.
func NormalizeArtifact(raw string) string {
	s := strings.TrimPrefix(raw, "\uFEFF")
	s = strings.ReplaceAll(s, "\\r\\n", "\n")
	s = strings.ReplaceAll(s, "\\n", "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

func requiredText(parent *etree.Element, path string) (string, error) {
	el := parent.FindElement(path)
	if el == nil {
		return "", fmt.Errorf("%w: falta campo %s", domain.ErrCafMalformed, path)
	}
	text := strings.TrimSpace(el.Text())
	if text == "" {
		return "", fmt.Errorf("%w: campo %s vacío", domain.ErrCafMalformed, path)
	}
	return text, nil
}

func requiredInt(parent *etree.Element, path string) (int, error) {
	text, err := requiredText(parent, path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: campo %s no es numérico: %q", domain.ErrCafMalformed, path, text)
	}
	return n, nil
}

func requiredInt64(parent *etree.Element, path string) (int64, error) {
	text, err := requiredText(parent, path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: campo %s no es numérico: %q", domain.ErrCafMalformed, path, text)
	}
	return n, nil
}
