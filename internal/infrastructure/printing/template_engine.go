package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

const invoiceTemplate = "invoice.html"

// InvoiceLine is one row of an invoice
type InvoiceLine struct {
	Name      string
	Color     string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// InvoiceData is everything the invoice template prints
type InvoiceData struct {
	StoreName        string
	StoreAddress     string
	OrderID          string
	IssuedAt         time.Time
	Status           string
	PaymentStatus    string
	CustomerName     string
	CustomerEmail    string
	ShipTo           []string
	Items            []InvoiceLine
	Total            decimal.Decimal
	Currency         string
	TrackingNumber   string
	PaymentReference string
	Locale           string
}

// TemplateEngine renders invoice documents with html/template
type TemplateEngine struct {
	tmpl *template.Template
	lang language.Tag
}

// NewTemplateEngine parses the embedded templates. locale is a BCP 47 tag
// (e.g. "en-IN") that drives number grouping and currency symbols.
func NewTemplateEngine(locale string) (*TemplateEngine, error) {
	lang, err := language.Parse(locale)
	if err != nil || locale == "" {
		lang = language.MustParse("en-IN")
	}

	e := &TemplateEngine{lang: lang}
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		// money is rebound per render to the invoice currency
		"money":      func(decimal.Decimal) string { return "" },
		"formatDate": formatDate,
		"title":      e.titleCase,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse templates", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// RenderInvoice executes the invoice template
func (e *TemplateEngine) RenderInvoice(data *InvoiceData) (string, error) {
	if data == nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "invoice data is nil", nil)
	}
	unit, err := currency.ParseISO(data.Currency)
	if err != nil {
		unit = currency.INR
	}
	if data.Locale == "" {
		data.Locale = e.lang.String()
	}

	t, err := e.tmpl.Clone()
	if err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to clone template", err)
	}
	printer := message.NewPrinter(e.lang)
	t.Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return FormatMoney(printer, unit, d)
		},
	})

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, invoiceTemplate, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// FormatMoney formats d with the currency symbol and locale grouping,
// e.g. "₹ 1,299.50".
func FormatMoney(p *message.Printer, unit currency.Unit, d decimal.Decimal) string {
	amount, _ := d.Round(2).Float64()
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

func (e *TemplateEngine) titleCase(s string) string {
	return cases.Title(e.lang).String(strings.ReplaceAll(s, "_", " "))
}

// InvoiceFileName is the download name for an order's invoice
func InvoiceFileName(orderID string) string {
	return fmt.Sprintf("invoice-%s.pdf", orderID)
}
