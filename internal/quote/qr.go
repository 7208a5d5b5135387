package quote

import (
	"encoding/base64"
	"fmt"
	htmltemplate "html/template"

	"github.com/skip2/go-qrcode"
)

const qrSize = 128

// Summary is the one-line reference encoded in the document QR code.
func (d Document) Summary() string {
	return fmt.Sprintf("%s | Presupuesto %s | %s | Tel. %s",
		d.Company.Name, FormatDate(d.Details.IssueDate), FormatPrint(d.TotalWithTax), d.Company.Phone)
}

// SummaryQR renders Summary as a PNG data URL for embedding in the print page.
func SummaryQR(d Document) (htmltemplate.URL, error) {
	qr, err := qrcode.New(d.Summary(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("create qr code: %w", err)
	}
	png, err := qr.PNG(qrSize)
	if err != nil {
		return "", fmt.Errorf("encode qr png: %w", err)
	}
	return htmltemplate.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
