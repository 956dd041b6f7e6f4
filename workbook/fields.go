package workbook

import (
	"fmt"

	"twbkit/markup"
)

// Field is a column declared by a data source.
type Field struct {
	Name       string // short name: caption, or internal name without brackets
	ID         string // internal name without brackets
	Qualified  string // unique within document
	DataSource string // display name of the owning data source
	Hidden     bool
	Role       string
	Datatype   string
	Calculated bool

	source *DataSource
	el     *markup.Element
}

func newField(ds *DataSource, col *markup.Element) Field {
	id := stripBrackets(col.SelectAttrValue("name", ""))
	f := Field{
		Name:       col.SelectAttrValue("caption", id),
		ID:         id,
		DataSource: ds.DisplayName(),
		Hidden:     col.SelectAttrValue("hidden", "") == "true",
		Role:       col.SelectAttrValue("role", ""),
		Datatype:   col.SelectAttrValue("datatype", ""),
		Calculated: col.SelectElement("calculation") != nil,
		source:     ds,
		el:         col,
	}
	if f.Name == "" {
		f.Name = id
	}
	return f
}

func stripBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

func qualifiedName(short, source string) string {
	return fmt.Sprintf("%s(%s)", short, source)
}

// qualify assigns qualified names. Short name is used as is unless two or
// more data sources declare it. When data source captions collide as well
// internal data source name is used, and any duplicates left after that get
// numeric suffix.
func qualify(sources []*DataSource) {
	owners := make(map[string]map[*DataSource]bool)
	for _, ds := range sources {
		for _, f := range ds.Fields {
			if owners[f.Name] == nil {
				owners[f.Name] = make(map[*DataSource]bool)
			}
			owners[f.Name][ds] = true
		}
	}

	count := make(map[string]int)
	for _, ds := range sources {
		for i := range ds.Fields {
			f := &ds.Fields[i]
			f.Qualified = f.Name
			if len(owners[f.Name]) > 1 {
				f.Qualified = qualifiedName(f.Name, f.DataSource)
			}
			count[f.Qualified]++
		}
	}

	used := make(map[string]bool)
	for _, ds := range sources {
		for i := range ds.Fields {
			f := &ds.Fields[i]
			if count[f.Qualified] > 1 && len(owners[f.Name]) > 1 && ds.Name != "" {
				f.Qualified = qualifiedName(f.Name, ds.Name)
			}
			name := f.Qualified
			for n := 2; used[name]; n++ {
				name = fmt.Sprintf("%s#%d", f.Qualified, n)
			}
			f.Qualified = name
			used[name] = true
		}
	}
}

// Fields returns fields of all data sources in document order.
func (d *Document) Fields() []Field {
	var out []Field
	for _, ds := range d.DataSources() {
		out = append(out, ds.Fields...)
	}
	return out
}

// HiddenFields returns fields marked hidden.
func (d *Document) HiddenFields() []Field {
	var out []Field
	for _, f := range d.Fields() {
		if f.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// FieldUse is a field referenced by at least one worksheet.
type FieldUse struct {
	Name       string `json:"name" yaml:"name"`
	DataSource string `json:"datasource" yaml:"datasource"`
}

// ActiveFields returns unique fields worksheets depend on. Data source is
// resolved to its caption using worksheet references first, then workbook
// level declarations.
func (d *Document) ActiveFields() []FieldUse {
	declared := make(map[string]string)
	for _, ds := range d.DataSources() {
		if ds.Name != "" {
			declared[ds.Name] = ds.DisplayName()
		}
	}

	var (
		out  []FieldUse
		seen = make(map[FieldUse]bool)
	)
	for _, view := range d.root().FindElements("view") {
		refs := make(map[string]string)
		if list := view.SelectElement("datasources"); list != nil {
			for _, ref := range list.SelectElements("datasource") {
				if c := ref.SelectAttrValue("caption", ""); c != "" {
					refs[ref.SelectAttrValue("name", "")] = c
				}
			}
		}
		for _, deps := range view.SelectElements("datasource-dependencies") {
			id := deps.SelectAttrValue("datasource", "")
			source, ok := refs[id]
			if !ok {
				source, ok = declared[id]
			}
			if !ok {
				source = unknownSource
			}
			for _, col := range deps.FindElements("column") {
				name := stripBrackets(col.SelectAttrValue("name", ""))
				use := FieldUse{Name: col.SelectAttrValue("caption", name), DataSource: source}
				if use.Name == "" || seen[use] {
					continue
				}
				seen[use] = true
				out = append(out, use)
			}
		}
	}
	return out
}
