package markup

import (
	"testing"
)

func TestElement_SetAttr(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		key   string
		value string
		want  string
	}{
		{
			name: "replace keeps neighbours",
			src:  "<a x='1'  y=\"2\"\n z='3'/>",
			key:  "y", value: "9",
			want: "<a x='1'  y=\"9\"\n z='3'/>",
		},
		{
			name: "append follows quote style",
			src:  "<column name='[Revenue]' role='measure' />",
			key:  "hidden", value: "true",
			want: "<column name='[Revenue]' role='measure' hidden='true' />",
		},
		{
			name: "append to bare element",
			src:  "<a></a>",
			key:  "k", value: `say "hi" & <bye>`,
			want: `<a k="say &quot;hi&quot; &amp; &lt;bye&gt;"></a>`,
		},
		{
			name: "same value is no-op",
			src:  "<a  k = 'v' >x</a>",
			key:  "k", value: "v",
			want: "<a  k = 'v' >x</a>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.src)
			tree.Root().SetAttr(tt.key, tt.value)
			if got := mustString(t, tree); got != tt.want {
				t.Errorf("got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestElement_SetAttrIdempotent(t *testing.T) {
	tree := mustParse(t, "<r><c name='[A]'/><c name='[B]'/></r>")
	c := tree.Root().SelectElements("c")[0]

	if !c.SetAttr("hidden", "true") {
		t.Fatal("first SetAttr() must report change")
	}
	once := mustString(t, tree)
	if c.SetAttr("hidden", "true") {
		t.Error("second SetAttr() must not report change")
	}
	if twice := mustString(t, tree); twice != once {
		t.Errorf("second SetAttr() changed output:\n%q\n%q", once, twice)
	}
	if want := "<r><c name='[A]' hidden='true'/><c name='[B]'/></r>"; once != want {
		t.Errorf("got %q, want %q", once, want)
	}
}

func TestElement_RemoveAttr(t *testing.T) {
	tree := mustParse(t, "<a x='1' y='2' z='3'/>")
	if !tree.Root().RemoveAttr("y") {
		t.Fatal("RemoveAttr() = false")
	}
	if tree.Root().RemoveAttr("nope") {
		t.Error("RemoveAttr() of absent attribute = true")
	}
	if got, want := mustString(t, tree), "<a x='1' z='3'/>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestElement_Children(t *testing.T) {
	tree := mustParse(t, "<r>\n  <a k='v' />\n</r>")
	a := tree.Root().SelectElement("a")

	child := NewElement("b")
	child.SetAttr("n", "1")
	a.AppendChild(child)
	if a.SelfClosing() {
		t.Error("element with children must not be self-closing")
	}
	if got, want := mustString(t, tree), "<r>\n  <a k='v' ><b n=\"1\"></b></a>\n</r>"; got != want {
		t.Fatalf("after append:\n got: %q\nwant: %q", got, want)
	}

	a.InsertChild(0, NewText("pre"))
	if got, want := a.Text(), "pre"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if !a.RemoveChild(child) || child.Parent() != nil {
		t.Error("RemoveChild() failed")
	}
	if a.RemoveChild(child) {
		t.Error("RemoveChild() of detached node = true")
	}
	if got, want := mustString(t, tree), "<r>\n  <a k='v' >pre</a>\n</r>"; got != want {
		t.Errorf("after remove:\n got: %q\nwant: %q", got, want)
	}
}

func TestElement_SetText(t *testing.T) {
	tree := mustParse(t, "<r><relation type='text'>select 1<!--x--></relation><e/></r>")
	rel := tree.Root().SelectElement("relation")
	rel.SetText("select a < b\nfrom t")
	tree.Root().SelectElement("e").SetText("v")

	want := "<r><relation type='text'>select a &lt; b\nfrom t</relation><e>v</e></r>"
	if got := mustString(t, tree); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestElement_DirectFieldChanges(t *testing.T) {
	tree := mustParse(t, "<r a='1'><x>old</x></r>")
	root := tree.Root()

	root.Attrs[0].Value = "2"
	root.SelectElement("x").Children[0].(*Text).Value = "new"
	root.SelectElement("x").Name = "y"

	if got, want := mustString(t, tree), "<r a='2'><y>new</y></r>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestElement_Navigation(t *testing.T) {
	tree := mustParse(t, `<w><ds name='a'><column name='[x]'/></ds><ws><ds name='a'/></ws></w>`)
	root := tree.Root()

	cols := root.FindElements("column")
	if len(cols) != 1 {
		t.Fatalf("FindElements() = %d, want 1", len(cols))
	}
	if p := cols[0].Ancestor("ds"); p == nil || p.SelectAttrValue("name", "") != "a" {
		t.Error("Ancestor() did not find owning element")
	}
	if cols[0].Ancestor("ws") != nil {
		t.Error("Ancestor() found unrelated element")
	}
	if got := len(root.FindElements("ds")); got != 2 {
		t.Errorf("FindElements(ds) = %d, want 2", got)
	}

	var visited []string
	root.Walk(func(e *Element) bool {
		visited = append(visited, e.Name)
		return e.Name != "ws"
	})
	if got, want := len(visited), 4; got != want {
		t.Errorf("Walk visited %v, want %d elements", visited, want)
	}
}

func TestTree_Query(t *testing.T) {
	tree := mustParse(t, `<w><datasources><datasource caption='A' name='f.1'/><datasource caption='B' name='f.2'/></datasources></w>`)
	tree.Root().FindElements("datasource")[1].SetAttr("caption", "C")

	found, err := tree.Query("//datasource[@caption='C']")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(found) != 1 || found[0].SelectAttrValue("name", "") != "f.2" {
		t.Errorf("Query() returned %d elements", len(found))
	}
	if _, err := tree.Query("//datasource[@caption='C'"); err == nil {
		t.Error("expected error for malformed path")
	}
}
