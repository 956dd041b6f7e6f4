package workbook

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func docString(t *testing.T, doc *Document) string {
	t.Helper()
	data, err := doc.Tree().Bytes()
	require.NoError(t, err)
	return string(data)
}

func TestRoundTrip_Unmodified(t *testing.T) {
	doc := openFixture(t)
	require.Equal(t, string(readFixture(t)), docString(t, doc))
}

func TestHideField_Isolation(t *testing.T) {
	doc := openFixture(t)
	orig := string(readFixture(t))

	require.NoError(t, doc.HideField("Revenue(A)"))
	require.True(t, doc.Dirty())

	// only the declaration is touched, worksheet dependency with the same
	// text further down stays as it was
	const decl = "<column caption='Revenue' datatype='real' name='[Revenue]' role='measure' type='quantitative' />"
	want := strings.Replace(orig, decl,
		"<column caption='Revenue' datatype='real' name='[Revenue]' role='measure' type='quantitative' hidden='true' />", 1)
	require.Equal(t, want, docString(t, doc))
}

func TestHideField_ExistingAttribute(t *testing.T) {
	doc := openFixture(t)
	orig := string(readFixture(t))

	require.NoError(t, doc.HideField("Revenue(B)"))
	want := strings.Replace(orig, "caption='Revenue' datatype='real' hidden='false'", "caption='Revenue' datatype='real' hidden='true'", 1)
	require.Equal(t, want, docString(t, doc))

	require.NoError(t, doc.UnhideField("Revenue(B)"))
	require.Equal(t, orig, docString(t, doc))
}

func TestHideField_Idempotent(t *testing.T) {
	doc := openFixture(t)

	require.NoError(t, doc.HideField("Region"))
	once := docString(t, doc)
	require.NoError(t, doc.HideField("Region"))
	require.Equal(t, once, docString(t, doc))

	// already hidden in source
	doc = openFixture(t)
	require.NoError(t, doc.HideField("Segment"))
	require.Equal(t, string(readFixture(t)), docString(t, doc))
}

func TestHideField_Resolution(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		source string
		want   string // qualified name of field expected to become hidden
	}{
		{"qualified", "Revenue(B)", "", "Revenue(B)"},
		{"unique short", "Region", "", "Region"},
		{"internal column name", "Calculation_1", "", "Profit Ratio"},
		{"internal data source name", "Revenue(federated.0a1)", "", "Revenue(A)"},
		{"explicit caption", "Revenue", "B", "Revenue(B)"},
		{"explicit internal name", "Revenue", "federated.0a1", "Revenue(A)"},
		{"parameter", "Top N", "Parameters", "Top N"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openFixture(t)
			require.NoError(t, doc.SetFieldHidden(tt.field, tt.source, true))

			var hidden []string
			for _, f := range doc.HiddenFields() {
				if f.Qualified != "Segment" {
					hidden = append(hidden, f.Qualified)
				}
			}
			require.Equal(t, []string{tt.want}, hidden)
		})
	}
}

func TestHideField_Errors(t *testing.T) {
	doc := openFixture(t)
	orig := docString(t, doc)

	err := doc.HideField("Revenue")
	require.ErrorIs(t, err, ErrAmbiguousName)
	var amb *AmbiguousNameError
	require.True(t, errors.As(err, &amb))
	require.Equal(t, []string{"Revenue(A)", "Revenue(B)"}, amb.Candidates)

	err = doc.HideField("NoSuchField")
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "NoSuchField", nf.Name)

	require.ErrorIs(t, doc.SetFieldHidden("Region", "B", true), ErrNotFound)
	require.ErrorIs(t, doc.HideField("Revenue(C)"), ErrNotFound)

	require.Equal(t, orig, docString(t, doc))
	require.False(t, doc.Dirty())
}

func TestReplaceFont(t *testing.T) {
	doc := openFixture(t)

	require.NoError(t, doc.ReplaceFont("TABLEAU BOOK", "Georgia"))
	require.Equal(t, []string{"georgia", "arial"}, doc.Fonts())

	require.NoError(t, doc.ReplaceFont("arial", "Verdana"))
	out := docString(t, doc)
	require.Contains(t, out, "<format attr='font-family' value='Verdana' />")
	require.Contains(t, out, "<run fontcolor='#787878' fontname='Verdana'>")

	require.ErrorIs(t, doc.ReplaceFont("Comic Sans", "Arial"), ErrNotFound)
}

func TestReplaceColor(t *testing.T) {
	doc := openFixture(t)

	require.NoError(t, doc.ReplaceColor("#1F77B4", "#000000"))
	require.True(t, doc.Dirty())
	require.Equal(t, []Color{
		{Sheet: "Sales Map", Element: "axis", Value: "#000000"},
		{Sheet: "Sales Map", Element: "mark", Value: "#FF0000"},
		{Sheet: "Sales Map", Element: "tooltip", Value: "#787878"},
		{Sheet: "Targets", Element: "header", Value: "#000000"},
	}, doc.Colors())

	require.NoError(t, doc.ReplaceColor("#787878", "#111111"))
	require.Contains(t, docString(t, doc), "<run fontcolor='#111111' fontname='Arial'>")

	require.ErrorIs(t, doc.ReplaceColor("#ABCDEF", "#222222"), ErrNotFound)
}

func TestReplace_Repeated(t *testing.T) {
	src := readFixture(t)
	doc, err := OpenBytes(fixture, src, nil)
	require.NoError(t, err)

	require.NoError(t, doc.ReplaceFont("Tableau Book", "Georgia"))
	require.NoError(t, doc.ReplaceColor("#FF0000", "#00FF00"))
	saved := docString(t, doc)

	// second run over saved result finds only replacement values
	doc, err = OpenBytes(fixture, []byte(saved), nil)
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceFont("Tableau Book", "georgia"))
	require.NoError(t, doc.ReplaceColor("#ff0000", "#00ff00"))
	require.False(t, doc.Dirty())
	require.Equal(t, saved, docString(t, doc))
}
