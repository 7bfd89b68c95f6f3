package layout

import "sort"

// PaintOrder returns the visible elements in display order: banners first,
// then the rest by ascending y (list order breaks ties), then the element
// identified by selectedID on top. Pass "" when nothing is selected.
func PaintOrder(elements []Element, selectedID string) []Element {
	var banners, rest []Element
	var selected Element
	for _, el := range elements {
		b := el.Box()
		if !b.Visible {
			continue
		}
		if selectedID != "" && b.ID == selectedID {
			selected = el
			continue
		}
		if el.Kind() == KindBanner {
			banners = append(banners, el)
		} else {
			rest = append(rest, el)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Box().Y < rest[j].Box().Y
	})

	out := make([]Element, 0, len(banners)+len(rest)+1)
	out = append(out, banners...)
	out = append(out, rest...)
	if selected != nil {
		out = append(out, selected)
	}
	return out
}
