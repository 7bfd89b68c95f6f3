package table_test

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/doclayout/table"
)

// ExampleTable renders a short line-item table with a colored header, a
// product code note and a discount in red.
func ExampleTable() {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()

	tbl := table.New(pdf).
		SetPosition(20, 80).
		SetWidth(170).
		SetBreak(237, 80).
		SetEmptyText("Sin productos")

	h := tbl.Header()
	h.AddCell("Producto").SetTextColor(table.RGBColor{R: 37, G: 99, B: 235})
	for _, s := range []string{"Cant.", "Pres.", "P. Unit.", "Desc.", "Total"} {
		h.AddCell(s)
	}

	r := tbl.AddRow().SetNote("Cód: P-001")
	r.AddCell("Resma A4")
	r.AddCell("2")
	r.AddCell("Unidad")
	r.AddCell("$ 12.50")
	r.AddCell("-$ 1.00").SetTextColor(table.Warning)
	r.AddCell("$ 24.00").SetBold(true)

	res, err := tbl.Render()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("rows=%d breaks=%d end=%.0f\n", res.Rows, res.PageBreaks, res.EndY)
	// Output:
	// rows=1 breaks=0 end=103
}
