package escpos

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// Ancho en caracteres de la impresora térmica de 80mm con fuente A.
const lineWidth = 42

// Comandos ESC/POS.
var (
	cmdInit        = []byte{0x1B, 0x40}             // inicializar impresora
	cmdCancelKanji = []byte{0x1C, 0x2E}             // salir de modo kanji
	cmdCodePage    = []byte{0x1B, 0x74, 0x12}       // tabla de caracteres CP858
	cmdFontA       = []byte{0x1B, 0x21, 0x00}       // fuente A (12x24)
	cmdBoldOn      = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff     = []byte{0x1B, 0x45, 0x00}
	cmdDoubleHW    = []byte{0x1D, 0x21, 0x11}       // doble alto y ancho
	cmdResetHW     = []byte{0x1D, 0x21, 0x00}
	cmdAlignCenter = []byte{0x1B, 0x61, 0x01}
	cmdAlignLeft   = []byte{0x1B, 0x61, 0x00}
	cmdCut         = []byte{0x1D, 0x56, 0x42, 0x00} // corte parcial
)

func cmdFeed(n byte) []byte { return []byte{0x1B, 0x64, n} }

// Ticket datos del comprobante a imprimir.
type Ticket struct {
	Company *entity.Company
	SaleID  int64
	Date    time.Time
	Folio   int64 // 0 = venta sin boleta electrónica
	Details []entity.SaleDetail
	Total   decimal.Decimal
}

// Totals desglosa el total bruto en neto e IVA (19%), en pesos enteros.
func (t Ticket) Totals() (neto, iva, total int64) {
	total = t.Total.Round(0).IntPart()
	neto = t.Total.Div(decimal.NewFromFloat(1.19)).Round(0).IntPart()
	iva = total - neto
	return neto, iva, total
}

// Render genera los bytes ESC/POS del ticket, con el texto codificado en CP858
// (la página de códigos de las impresoras térmicas para español).
func Render(t Ticket) ([]byte, error) {
	enc := charmap.CodePage858.NewEncoder()
	var buf bytes.Buffer

	text := func(s string) error {
		out, err := enc.String(s)
		if err != nil {
			return fmt.Errorf("escpos: codificar %q a CP858: %w", s, err)
		}
		buf.WriteString(out)
		return nil
	}
	sep := strings.Repeat("-", lineWidth) + "\n"

	buf.Write(cmdInit)
	buf.Write(cmdCancelKanji)
	buf.Write(cmdCodePage)
	buf.Write(cmdFontA)

	buf.Write(cmdAlignCenter)
	buf.Write(cmdDoubleHW)
	if err := text(t.Company.Name + "\n"); err != nil {
		return nil, err
	}
	buf.Write(cmdResetHW)
	if err := text("RUT: " + t.Company.RUT + "\n"); err != nil {
		return nil, err
	}
	if t.Company.Email != "" {
		if err := text(t.Company.Email + "\n"); err != nil {
			return nil, err
		}
	}
	if err := text(sep); err != nil {
		return nil, err
	}

	buf.Write(cmdAlignLeft)
	if err := text(fmt.Sprintf("Venta #%d\n", t.SaleID)); err != nil {
		return nil, err
	}
	if t.Folio > 0 {
		if err := text(fmt.Sprintf("Boleta electronica N %d\n", t.Folio)); err != nil {
			return nil, err
		}
	}
	if err := text("Fecha: " + t.Date.Format("02-01-2006 15:04") + "\n"); err != nil {
		return nil, err
	}
	if err := text(sep); err != nil {
		return nil, err
	}

	for _, d := range t.Details {
		if err := text(detailLine(d)); err != nil {
			return nil, err
		}
	}

	if err := text(sep); err != nil {
		return nil, err
	}
	neto, iva, total := t.Totals()
	if err := text(fmt.Sprintf("Neto: $%d\n", neto)); err != nil {
		return nil, err
	}
	if err := text(fmt.Sprintf("IVA (19%%): $%d\n", iva)); err != nil {
		return nil, err
	}
	buf.Write(cmdBoldOn)
	buf.Write(cmdDoubleHW)
	if err := text(fmt.Sprintf("TOTAL: $%d\n", total)); err != nil {
		return nil, err
	}
	buf.Write(cmdResetHW)
	buf.Write(cmdBoldOff)

	buf.Write(cmdAlignCenter)
	if err := text("Gracias por su compra\n\n"); err != nil {
		return nil, err
	}
	buf.Write(cmdFeed(3))
	buf.Write(cmdCut)

	return buf.Bytes(), nil
}

// RenderBase64 genera el ticket y lo devuelve en base64, listo para el cliente
// de impresión (Electron u otro puente local).
func RenderBase64(t Ticket) (string, error) {
	raw, err := Render(t)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// TextPreview versión en texto plano del ticket para previsualizar en pantalla.
func TextPreview(t Ticket) string {
	neto, iva, total := t.Totals()
	lines := []string{
		t.Company.Name,
		"RUT: " + t.Company.RUT,
		fmt.Sprintf("Venta #%d", t.SaleID),
	}
	if t.Folio > 0 {
		lines = append(lines, fmt.Sprintf("Boleta electronica N %d", t.Folio))
	}
	lines = append(lines,
		"Fecha: "+t.Date.Format("02-01-2006 15:04"),
		strings.Repeat("-", lineWidth),
	)
	for _, d := range t.Details {
		lines = append(lines, strings.TrimRight(detailLine(d), "\n"))
	}
	lines = append(lines,
		strings.Repeat("-", lineWidth),
		fmt.Sprintf("Neto: $%d", neto),
		fmt.Sprintf("IVA (19%%): $%d", iva),
		fmt.Sprintf("TOTAL: $%d", total),
		"Gracias por su compra",
	)
	return strings.Join(lines, "\n")
}

// detailLine formatea "cantidad x nombre" a la izquierda y el precio a la
// derecha, truncando el nombre para no romper el ancho de la impresora.
// Se cuenta en runas: en CP858 cada caracter ocupa un byte en la impresora.
func detailLine(d entity.SaleDetail) string {
	left := []rune(fmt.Sprintf("%s x %s", d.Quantity.String(), d.Name))
	price := "$" + d.UnitPrice.Round(0).String()

	maxLeft := lineWidth - len(price) - 1
	if len(left) > maxLeft {
		left = left[:maxLeft]
	}
	return string(left) + strings.Repeat(" ", lineWidth-len(price)-len(left)) + price + "\n"
}
