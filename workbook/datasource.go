package workbook

import (
	"strings"

	"twbkit/markup"
)

// unknownSource owns fields whose data source carries no identity.
const unknownSource = "unknown"

// DataSource is a named data source declared by the workbook.
type DataSource struct {
	Name        string // internal identifier, e.g. federated.1x2y3z
	Caption     string
	Fields      []Field
	Connections []Connection
}

// DisplayName returns caption, internal name when caption is absent.
func (ds *DataSource) DisplayName() string {
	switch {
	case ds.Caption != "":
		return ds.Caption
	case ds.Name != "":
		return ds.Name
	}
	return unknownSource
}

// Connection describes a single physical connection of the data source.
type Connection struct {
	DataSource    string
	Class         string
	Server        string
	Port          string
	Database      string
	Username      string
	Password      string
	Filename      string
	CloudProvider string
	CustomSQL     []string
}

// DataSources returns data sources declared by the workbook in document
// order. References to data sources from worksheets are not included.
// Declarations carrying neither name nor caption are merged into single
// "unknown" data source placed where the first of them appears.
func (d *Document) DataSources() []*DataSource {
	var (
		out    []*DataSource
		orphan *DataSource
		seen   = make(map[string]bool)
	)
	for _, el := range definingSources(d.root()) {
		name, caption := el.SelectAttrValue("name", ""), el.SelectAttrValue("caption", "")
		if name == "" && caption == "" {
			if orphan == nil {
				orphan = &DataSource{}
				out = append(out, orphan)
			}
			orphan.declare(el)
			continue
		}
		if name != "" {
			if seen[name] {
				continue
			}
			seen[name] = true
		}
		ds := &DataSource{Name: name, Caption: caption}
		ds.declare(el)
		out = append(out, ds)
	}
	qualify(out)
	return out
}

// declare adds connections and fields of datasource element.
func (ds *DataSource) declare(el *markup.Element) {
	ds.Connections = append(ds.Connections, connections(ds, el)...)
	for _, col := range el.SelectElements("column") {
		ds.Fields = append(ds.Fields, newField(ds, col))
	}
}

// definingSources selects datasource elements which declare something:
// columns or connections. Worksheet references carry neither.
func definingSources(root *markup.Element) []*markup.Element {
	var out []*markup.Element
	root.Walk(func(el *markup.Element) bool {
		if el.Name != "datasource" {
			return true
		}
		if el.SelectElement("column") != nil || el.SelectElement("connection") != nil {
			out = append(out, el)
		}
		// data sources do not nest
		return false
	})
	return out
}

// connections collects concrete connections of a data source. Federated
// wrappers are skipped, their named connections are reported instead.
// Custom SQL relations are attached to the named connection they refer to,
// or to the closest enclosing connection.
func connections(ds *DataSource, root *markup.Element) []Connection {
	var (
		out   []Connection
		index = make(map[*markup.Element]int)
		named = make(map[string]*markup.Element)
	)
	for _, el := range root.FindElements("connection") {
		class := el.SelectAttrValue("class", "")
		if class == "" || class == "federated" {
			continue
		}
		if nc := el.Parent(); nc != nil && nc.Name == "named-connection" {
			if name := nc.SelectAttrValue("name", ""); name != "" {
				named[name] = el
			}
		}
		index[el] = len(out)
		out = append(out, Connection{
			DataSource:    ds.DisplayName(),
			Class:         class,
			Server:        el.SelectAttrValue("server", ""),
			Port:          el.SelectAttrValue("port", ""),
			Database:      el.SelectAttrValue("dbname", ""),
			Username:      el.SelectAttrValue("username", ""),
			Password:      el.SelectAttrValue("password", ""),
			Filename:      el.SelectAttrValue("filename", ""),
			CloudProvider: el.SelectAttrValue("cloudFileProvider", ""),
		})
	}

	for _, rel := range customSQLRelations(root) {
		owner := named[rel.SelectAttrValue("connection", "")]
		if owner == nil {
			owner = rel.Ancestor("connection")
		}
		if i, ok := index[owner]; ok {
			out[i].CustomSQL = append(out[i].CustomSQL, strings.TrimSpace(rel.Text()))
		}
	}
	return out
}

func customSQLRelations(el *markup.Element) []*markup.Element {
	var out []*markup.Element
	for _, rel := range el.FindElements("relation") {
		if rel.SelectAttrValue("type", "") == "text" {
			out = append(out, rel)
		}
	}
	return out
}

// Connections returns connections of all data sources.
func (d *Document) Connections() []Connection {
	var out []Connection
	for _, ds := range d.DataSources() {
		out = append(out, ds.Connections...)
	}
	return out
}

// CustomSQL returns unique text of custom SQL relations in document order.
func (d *Document) CustomSQL() []string {
	var u uniq
	for _, rel := range customSQLRelations(d.root()) {
		u.add(strings.TrimSpace(rel.Text()))
	}
	return u.list
}

// Databases returns unique database names referenced by connections.
func (d *Document) Databases() []string {
	var u uniq
	for _, el := range d.root().FindElements("connection") {
		u.add(el.SelectAttrValue("dbname", ""))
	}
	return u.list
}

// LinkedFiles returns unique lowercased file names of file based
// connections.
func (d *Document) LinkedFiles() []string {
	var u uniq
	for _, el := range d.root().FindElements("connection") {
		u.add(strings.ToLower(el.SelectAttrValue("filename", "")))
	}
	return u.list
}

// OneDriveFiles returns unique lowercased file names of connections to files
// stored in OneDrive.
func (d *Document) OneDriveFiles() []string {
	var u uniq
	for _, el := range d.root().FindElements("connection") {
		if strings.EqualFold(el.SelectAttrValue("cloudFileProvider", ""), "onedrive") {
			u.add(strings.ToLower(el.SelectAttrValue("filename", "")))
		}
	}
	return u.list
}

// uniq accumulates non-empty strings preserving first occurrence order.
type uniq struct {
	list []string
	seen map[string]bool
}

func (u *uniq) add(s string) {
	if s == "" || u.seen[s] {
		return
	}
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	u.seen[s] = true
	u.list = append(u.list, s)
}
