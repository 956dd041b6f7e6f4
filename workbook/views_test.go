package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const fixture = "two_sources.twb"

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	return data
}

func openFixture(t *testing.T) *Document {
	t.Helper()
	doc, err := OpenBytes(fixture, readFixture(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	return doc
}

func qualifiedNames(fields []Field) []string {
	var out []string
	for _, f := range fields {
		out = append(out, f.Qualified)
	}
	return out
}

func TestDataSources(t *testing.T) {
	doc := openFixture(t)

	sources := doc.DataSources()
	require.Len(t, sources, 3)
	require.Equal(t, "Parameters", sources[0].DisplayName())
	require.Equal(t, "A", sources[1].DisplayName())
	require.Equal(t, "federated.0a1", sources[1].Name)
	require.Equal(t, "B", sources[2].DisplayName())
	require.Len(t, sources[1].Fields, 3)
	require.Len(t, sources[2].Fields, 2)
}

func TestConnections(t *testing.T) {
	doc := openFixture(t)

	conns := doc.Connections()
	require.Len(t, conns, 3)

	require.Equal(t, "A", conns[0].DataSource)
	require.Equal(t, "excel-direct", conns[0].Class)
	require.Equal(t, "C:/Data/Sales.xlsx", conns[0].Filename)
	require.Empty(t, conns[0].CustomSQL)

	require.Equal(t, Connection{
		DataSource: "B",
		Class:      "postgres",
		Server:     "db.example.com",
		Port:       "5432",
		Database:   "sales_dw",
		Username:   "analyst",
		CustomSQL:  []string{"SELECT region, SUM(amount) AS revenue\nFROM orders WHERE amount > 0"},
	}, conns[1])

	require.Equal(t, "onedrive", conns[2].CloudProvider)
}

func TestFields_Qualification(t *testing.T) {
	doc := openFixture(t)

	fields := doc.Fields()
	require.Equal(t, []string{"Top N", "Revenue(A)", "Region", "Profit Ratio", "Revenue(B)", "Segment"}, qualifiedNames(fields))

	require.Equal(t, "Revenue", fields[1].Name)
	require.Equal(t, "A", fields[1].DataSource)
	require.Equal(t, "Revenue", fields[4].Name)
	require.Equal(t, "revenue", fields[4].ID)
	require.Equal(t, "B", fields[4].DataSource)
	require.Equal(t, "Region", fields[2].ID)
	require.Equal(t, "Calculation_1", fields[3].ID)
	require.True(t, fields[3].Calculated)
	require.False(t, fields[2].Calculated)
	require.Equal(t, "measure", fields[1].Role)
	require.Equal(t, "real", fields[1].Datatype)

	seen := make(map[string]bool)
	for _, q := range qualifiedNames(fields) {
		require.False(t, seen[q], "qualified name %q is not unique", q)
		seen[q] = true
	}
}

func TestFields_CaptionCollision(t *testing.T) {
	src := `<workbook><datasources>
<datasource caption='Sales' name='federated.1'><column caption='Revenue' name='[r]'/><column name='[Only]'/></datasource>
<datasource caption='Sales' name='federated.2'><column caption='Revenue' name='[r]'/></datasource>
<datasource name='federated.3'><column name='[Revenue]'/></datasource>
</datasources></workbook>`
	doc, err := OpenBytes("collide.twb", []byte(src), nil)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"Revenue(federated.1)", "Only", "Revenue(federated.2)", "Revenue(federated.3)"},
		qualifiedNames(doc.Fields()))
}

func TestFields_Orphan(t *testing.T) {
	src := `<workbook><datasources><datasource><column name='[Lost]' hidden='true'/></datasource></datasources></workbook>`
	doc, err := OpenBytes("orphan.twb", []byte(src), nil)
	require.NoError(t, err)

	fields := doc.Fields()
	require.Len(t, fields, 1)
	require.Equal(t, "unknown", fields[0].DataSource)
	require.Equal(t, "Lost", fields[0].Qualified)
	require.True(t, fields[0].Hidden)
}

func TestFields_SingleUnknownSource(t *testing.T) {
	src := `<workbook><datasources>
<datasource><column name='[X]'/><connection class='textscan' filename='a.csv'/></datasource>
<datasource caption='A' name='federated.a'><column name='[X]'/></datasource>
<datasource><column name='[X]'/><column name='[Y]'/></datasource>
</datasources></workbook>`
	doc, err := OpenBytes("orphans.twb", []byte(src), nil)
	require.NoError(t, err)

	sources := doc.DataSources()
	require.Len(t, sources, 2)
	require.Equal(t, "unknown", sources[0].DisplayName())
	require.Len(t, sources[0].Fields, 3)
	require.Len(t, sources[0].Connections, 1)
	require.Equal(t, "unknown", sources[0].Connections[0].DataSource)

	require.Equal(t, []string{"X(unknown)", "X(unknown)#2", "Y", "X(A)"}, qualifiedNames(doc.Fields()))

	require.NoError(t, doc.HideField("Y"))
	require.ErrorIs(t, doc.HideField("X"), ErrAmbiguousName)
	require.NoError(t, doc.HideField("X(unknown)#2"))
}

func TestHiddenAndActiveFields(t *testing.T) {
	doc := openFixture(t)

	require.Equal(t, []string{"Segment"}, qualifiedNames(doc.HiddenFields()))
	require.Equal(t, []FieldUse{
		{Name: "Revenue", DataSource: "A"},
		{Name: "Region", DataSource: "A"},
		{Name: "Revenue", DataSource: "B"},
	}, doc.ActiveFields())
}

func TestConnectionViews(t *testing.T) {
	doc := openFixture(t)

	require.Equal(t, []string{"SELECT region, SUM(amount) AS revenue\nFROM orders WHERE amount > 0"}, doc.CustomSQL())
	require.Equal(t, []string{"c:/data/sales.xlsx", "https://onedrive.live.com/targets.xlsx"}, doc.LinkedFiles())
	require.Equal(t, []string{"https://onedrive.live.com/targets.xlsx"}, doc.OneDriveFiles())
	require.Equal(t, []string{"sales_dw"}, doc.Databases())
}

func TestStyleViews(t *testing.T) {
	doc := openFixture(t)

	require.Equal(t, []string{"Sales Map", "Targets"}, doc.Worksheets())
	require.Equal(t, []string{"tableau book", "arial"}, doc.Fonts())
	require.Equal(t, []Color{
		{Sheet: "Sales Map", Element: "axis", Value: "#1f77b4"},
		{Sheet: "Sales Map", Element: "mark", Value: "#FF0000"},
		{Sheet: "Sales Map", Element: "tooltip", Value: "#787878"},
		{Sheet: "Targets", Element: "header", Value: "#1f77b4"},
	}, doc.Colors())
	require.Equal(t, []string{"tableau_10"}, doc.ColorPalettes())
	require.Equal(t, []string{"image/logo.png"}, doc.Images())
	require.Equal(t, []string{"custom/star.png"}, doc.Shapes())
}

func TestViews_EmptyDocument(t *testing.T) {
	doc, err := OpenBytes("empty.twb", []byte("<workbook/>"), nil)
	require.NoError(t, err)

	require.Empty(t, doc.DataSources())
	require.Empty(t, doc.Fields())
	require.Empty(t, doc.ActiveFields())
	require.Empty(t, doc.Colors())
	require.Empty(t, doc.Fonts())
	require.Nil(t, doc.Resources())
	require.False(t, doc.Dirty())
}

func TestQuery(t *testing.T) {
	doc := openFixture(t)

	els, err := doc.Query("//datasource[@caption='B']/column")
	require.NoError(t, err)
	require.Len(t, els, 2)
	require.Equal(t, "[revenue]", els[0].SelectAttrValue("name", ""))

	_, err = doc.Query("//[")
	require.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	_, err := OpenBytes("bad.twb", []byte("<workbook><datasources></workbook>"), nil)
	require.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.twbx"), nil)
	require.Error(t, err)
}
