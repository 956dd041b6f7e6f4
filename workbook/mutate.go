package workbook

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"twbkit/markup"
)

// HideField marks field hidden. Name may be qualified name, short name,
// internal column name or explicit "short(data source)" form.
func (d *Document) HideField(name string) error {
	return d.SetFieldHidden(name, "", true)
}

// UnhideField clears hidden mark of the field.
func (d *Document) UnhideField(name string) error {
	return d.SetFieldHidden(name, "", false)
}

// SetFieldHidden sets visibility of a single field. When source is not
// empty, only fields of data source with this caption or internal name are
// considered. Setting the current value again succeeds and does not change
// the markup.
func (d *Document) SetFieldHidden(name, source string, hidden bool) error {
	f, err := d.resolveField(name, source)
	if err != nil {
		return err
	}
	if f.el.SetAttr("hidden", strconv.FormatBool(hidden)) {
		d.log.Debug("Field visibility changed",
			zap.String("field", f.Qualified), zap.String("datasource", f.DataSource), zap.Bool("hidden", hidden))
	}
	d.dirty = true
	return nil
}

// resolveField finds exactly one field matching name.
func (d *Document) resolveField(name, source string) (*Field, error) {
	fields := d.Fields()

	if source == "" {
		for i := range fields {
			if fields[i].Qualified == name {
				return &fields[i], nil
			}
		}
		if short, ds, ok := splitQualified(name); ok {
			if f, err := pickField(fields, short, ds); err == nil {
				return f, nil
			}
		}
	}
	return pickField(fields, name, source)
}

// pickField selects field by short or internal name, optionally limited to
// data source.
func pickField(fields []Field, name, source string) (*Field, error) {
	var matches []*Field
	for i := range fields {
		f := &fields[i]
		if source != "" && source != f.DataSource && source != f.source.Name {
			continue
		}
		if f.Name == name {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		for i := range fields {
			f := &fields[i]
			if source != "" && source != f.DataSource && source != f.source.Name {
				continue
			}
			if f.ID == name {
				matches = append(matches, f)
			}
		}
	}

	switch len(matches) {
	case 0:
		return nil, &NotFoundError{What: "field", Name: name, DataSource: source}
	case 1:
		return matches[0], nil
	}
	candidates := make([]string, 0, len(matches))
	for _, f := range matches {
		candidates = append(candidates, f.Qualified)
	}
	return nil, &AmbiguousNameError{Name: name, Candidates: candidates}
}

// splitQualified splits "short(source)" form.
func splitQualified(name string) (string, string, bool) {
	if !strings.HasSuffix(name, ")") {
		return "", "", false
	}
	i := strings.LastIndex(name, "(")
	if i <= 0 {
		return "", "", false
	}
	return name[:i], name[i+1 : len(name)-1], true
}

// ReplaceFont replaces font family in formatting and text runs. Matching is
// case insensitive. When from is absent but to is already used, replacement
// is considered done: nil is returned and document stays unmodified.
func (d *Document) ReplaceFont(from, to string) error {
	type site struct {
		el   *markup.Element
		attr string
	}
	var sites []site
	done := false
	check := func(el *markup.Element, attr string) {
		v := el.SelectAttrValue(attr, "")
		switch {
		case strings.EqualFold(v, from):
			sites = append(sites, site{el, attr})
		case strings.EqualFold(v, to):
			done = true
		}
	}
	for _, el := range d.fontFormats() {
		check(el, "value")
	}
	for _, el := range d.root().FindElements("run") {
		if _, ok := el.Attr("fontname"); ok {
			check(el, "fontname")
		}
	}
	if len(sites) == 0 {
		if done {
			return nil
		}
		return &NotFoundError{What: "font", Name: from}
	}

	for _, s := range sites {
		s.el.SetAttr(s.attr, to)
	}
	d.dirty = true
	d.log.Debug("Font replaced", zap.String("from", from), zap.String("to", to), zap.Int("count", len(sites)))
	return nil
}

// ReplaceColor replaces color value wherever Colors reports it. Matching is
// case insensitive. Like ReplaceFont it succeeds without changes when only
// to is found.
func (d *Document) ReplaceColor(from, to string) error {
	var (
		sites []colorSite
		done  bool
	)
	for _, s := range d.colorSites() {
		switch {
		case strings.EqualFold(s.color.Value, from):
			sites = append(sites, s)
		case strings.EqualFold(s.color.Value, to):
			done = true
		}
	}
	if len(sites) == 0 {
		if done {
			return nil
		}
		return &NotFoundError{What: "color", Name: from}
	}

	for _, s := range sites {
		s.el.SetAttr(s.attr, to)
	}
	d.dirty = true
	d.log.Debug("Color replaced", zap.String("from", from), zap.String("to", to), zap.Int("count", len(sites)))
	return nil
}
