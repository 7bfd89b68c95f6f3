// Package quote holds the quotation data that feeds the exporter: line items,
// header fields and the derived totals.
//
// Totals are never cached implicitly. Every mutating method recomputes them
// with Recompute before returning.
package quote

import (
	"time"

	"github.com/lvillar/doclayout/placeholder"
)

// TaxRate is the tax included in every unit price.
const TaxRate = 0.1525

// Item is one line of the quotation.
type Item struct {
	Nombre         string  `json:"nombre"`
	CodigoInterno  string  `json:"codigoInterno,omitempty"`
	Cantidad       float64 `json:"cantidad"`
	PrecioUnitario float64 `json:"precioUnitario"`
	DescuentoMonto float64 `json:"descuentoMonto,omitempty"`
	Presentacion   string  `json:"presentacion,omitempty"`
}

// Total returns the line total: tax-inclusive price times quantity, less
// the line discount.
func (it Item) Total() float64 {
	return it.PrecioUnitario*it.Cantidad - it.DescuentoMonto
}

// Status is the lifecycle state of a quotation.
type Status string

const (
	StatusPending  Status = "pendiente"
	StatusApproved Status = "aprobada"
	StatusRejected Status = "rechazada"
	StatusExpired  Status = "vencida"
)

// Label returns the display label for s. Unknown states read as pending.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "Aprobada"
	case StatusRejected:
		return "Rechazada"
	case StatusExpired:
		return "Vencida"
	}
	return "Pendiente"
}

// Totals are the amounts derived from the line items.
type Totals struct {
	Products float64 `json:"products"` // sum of line totals, tax included
	Discount float64 `json:"discount"` // general discount
	Subtotal float64 `json:"subtotal"` // after discount, tax excluded
	Tax      float64 `json:"tax"`
	ICBPER   float64 `json:"icbper"`
	Total    float64 `json:"total"`
}

// Recompute derives the totals from the line items, a general discount and
// the plastic bag levy (ICBPER). Prices include tax, so the tax is carved
// out of the discounted amount.
func Recompute(items []Item, discount, icbper float64) Totals {
	var products float64
	for _, it := range items {
		products += it.Total()
	}
	after := products - discount
	subtotal := after - after*TaxRate
	tax := after - subtotal
	return Totals{
		Products: products,
		Discount: discount,
		Subtotal: subtotal,
		Tax:      tax,
		ICBPER:   icbper,
		Total:    subtotal + tax + icbper,
	}
}

// Quote is a quotation with its header fields and line items.
type Quote struct {
	Cliente          string    `json:"cliente,omitempty"`
	Vendedor         string    `json:"vendedor,omitempty"`
	Fecha            time.Time `json:"fecha"`
	FechaVencimiento time.Time `json:"fechaVencimiento"`
	Estado           Status    `json:"estado,omitempty"`
	Observaciones    string    `json:"observaciones,omitempty"`
	Items            []Item    `json:"items"`
	DescuentoGeneral float64   `json:"descuento,omitempty"`
	ICBPER           float64   `json:"icbper,omitempty"`

	totals Totals
}

// Totals returns the totals from the last recompute.
func (q *Quote) Totals() Totals { return q.totals }

// Recompute refreshes the cached totals and returns them.
func (q *Quote) Recompute() Totals {
	q.totals = Recompute(q.Items, q.DescuentoGeneral, q.ICBPER)
	return q.totals
}

// AddItem appends a line item.
func (q *Quote) AddItem(it Item) Totals {
	q.Items = append(q.Items, it)
	return q.Recompute()
}

// RemoveItem deletes the line item at index i. Out of range indexes are
// ignored.
func (q *Quote) RemoveItem(i int) Totals {
	if i >= 0 && i < len(q.Items) {
		q.Items = append(q.Items[:i], q.Items[i+1:]...)
	}
	return q.Recompute()
}

// SetGeneralDiscount sets the discount applied to the whole quotation.
func (q *Quote) SetGeneralDiscount(d float64) Totals {
	q.DescuentoGeneral = d
	return q.Recompute()
}

// SetICBPER sets the plastic bag levy.
func (q *Quote) SetICBPER(v float64) Totals {
	q.ICBPER = v
	return q.Recompute()
}

// Values returns the placeholder values for q. Missing header fields get
// their display defaults and a positive discount is negated so it reads as
// a deduction.
func (q *Quote) Values() placeholder.Values {
	t := q.Recompute()
	cliente := q.Cliente
	if cliente == "" {
		cliente = "No especificado"
	}
	vendedor := q.Vendedor
	if vendedor == "" {
		vendedor = "-"
	}
	discount := 0.0
	if t.Discount > 0 {
		discount = -t.Discount
	}
	v := placeholder.Values{
		placeholder.Cliente:          cliente,
		placeholder.Vendedor:         vendedor,
		placeholder.Estado:           q.Estado.Label(),
		placeholder.Subtotal:         t.Subtotal,
		placeholder.Descuento:        discount,
		placeholder.Impuesto:         t.Tax,
		placeholder.Total:            t.Total,
		placeholder.Observaciones:    q.Observaciones,
		placeholder.Fecha:            "",
		placeholder.FechaVencimiento: "",
	}
	if !q.Fecha.IsZero() {
		v[placeholder.Fecha] = q.Fecha
	}
	if !q.FechaVencimiento.IsZero() {
		v[placeholder.FechaVencimiento] = q.FechaVencimiento
	}
	return v
}
