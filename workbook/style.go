package workbook

import (
	"strings"

	"twbkit/markup"
)

// Color is a color value used by worksheet formatting.
type Color struct {
	Sheet   string `json:"sheet" yaml:"sheet"`
	Element string `json:"element" yaml:"element"` // style rule element, "tooltip" for tooltip text runs
	Value   string `json:"value" yaml:"value"`
}

// Worksheets returns worksheet names in document order.
func (d *Document) Worksheets() []string {
	var u uniq
	for _, ws := range d.worksheets() {
		u.add(ws.SelectAttrValue("name", ""))
	}
	return u.list
}

func (d *Document) worksheets() []*markup.Element {
	return d.root().FindElements("worksheet")
}

// fontFormats returns format elements declaring font family.
func (d *Document) fontFormats() []*markup.Element {
	var out []*markup.Element
	for _, el := range d.root().FindElements("format") {
		if el.SelectAttrValue("attr", "") == "font-family" {
			out = append(out, el)
		}
	}
	return out
}

// Fonts returns unique lowercased font families used by formatting.
func (d *Document) Fonts() []string {
	var u uniq
	for _, el := range d.fontFormats() {
		u.add(strings.ToLower(el.SelectAttrValue("value", "")))
	}
	return u.list
}

// colorSite is a single place in markup carrying color value.
type colorSite struct {
	color Color
	el    *markup.Element
	attr  string
}

// colorSites lists worksheet color values: style rule formats first, then
// tooltip text runs, sheet by sheet.
func (d *Document) colorSites() []colorSite {
	var out []colorSite
	for _, ws := range d.worksheets() {
		sheet := ws.SelectAttrValue("name", "")
		for _, rule := range ws.FindElements("style-rule") {
			element := rule.SelectAttrValue("element", "")
			for _, f := range rule.FindElements("format") {
				if v := f.SelectAttrValue("value", ""); strings.Contains(v, "#") {
					out = append(out, colorSite{color: Color{Sheet: sheet, Element: element, Value: v}, el: f, attr: "value"})
				}
			}
		}
		for _, ft := range ws.FindElements("formatted-text") {
			for _, run := range ft.FindElements("run") {
				if v := run.SelectAttrValue("fontcolor", ""); strings.Contains(v, "#") {
					out = append(out, colorSite{color: Color{Sheet: sheet, Element: "tooltip", Value: v}, el: run, attr: "fontcolor"})
				}
			}
		}
	}
	return out
}

// Colors returns unique color usages of worksheets in document order.
func (d *Document) Colors() []Color {
	var (
		out  []Color
		seen = make(map[Color]bool)
	)
	for _, s := range d.colorSites() {
		if !seen[s.color] {
			seen[s.color] = true
			out = append(out, s.color)
		}
	}
	return out
}

// ColorPalettes returns unique palette names used by encodings.
func (d *Document) ColorPalettes() []string {
	var u uniq
	for _, el := range d.root().FindElements("encoding") {
		u.add(el.SelectAttrValue("palette", ""))
	}
	return u.list
}

// Images returns unique lowercased paths of images placed on dashboards.
func (d *Document) Images() []string {
	var u uniq
	for _, zone := range d.root().FindElements("zone") {
		if isBitmapZone(zone) {
			u.add(strings.ToLower(zone.SelectAttrValue("param", "")))
		}
	}
	return u.list
}

// isBitmapZone checks zone type. Depending on version it is kept in "type",
// "type-v2" or feature prefixed "...type" attribute.
func isBitmapZone(zone *markup.Element) bool {
	for _, a := range zone.Attrs {
		if a.Name == "type" || a.Name == "type-v2" || strings.HasSuffix(a.Name, ".type") {
			if a.Value == "bitmap" {
				return true
			}
		}
	}
	return false
}

// Shapes returns unique lowercased names of custom shapes.
func (d *Document) Shapes() []string {
	var u uniq
	for _, el := range d.root().FindElements("shape") {
		u.add(strings.ToLower(el.SelectAttrValue("name", "")))
	}
	return u.list
}
