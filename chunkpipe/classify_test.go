package chunkpipe

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		kind Kind
		ok   bool
	}{
		{"text", Element{Kind: KindText, Text: "x"}, KindText, true},
		{"heading", Element{Kind: KindHeading, Text: "x"}, KindHeading, true},
		{"list item", Element{Kind: KindListItem, Text: "x"}, KindListItem, true},
		{"form field", Element{Kind: KindFormField, Text: "x"}, KindFormField, true},
		{"table", Element{Kind: KindTable, Table: &Table{}}, KindTable, true},
		{"table without grid", Element{Kind: KindTable}, KindTable, false},
		{"picture", Element{Kind: KindPicture}, KindPicture, true},
		{"unsupported", Element{Kind: KindUnsupported}, KindUnsupported, false},
		{"unknown kind", Element{Kind: Kind("chart")}, KindUnsupported, false},
		{"empty kind", Element{}, KindUnsupported, false},
	}

	for _, tt := range tests {
		kind, ok := Classify(tt.el)
		if kind != tt.kind || ok != tt.ok {
			t.Errorf("%s: Classify = (%q, %v), want (%q, %v)", tt.name, kind, ok, tt.kind, tt.ok)
		}
	}
}

func TestFilter_DropsBeforeAssembly(t *testing.T) {
	elements := []Element{
		{Kind: KindText, Text: "keep"},
		{Kind: Kind("chart")},
		{Kind: KindUnsupported},
		{Kind: KindPicture},
	}

	kept := filter(elements)
	if len(kept) != 2 {
		t.Fatalf("got %d elements, want 2", len(kept))
	}
	if kept[0].Kind != KindText || kept[1].Kind != KindPicture {
		t.Fatalf("kept wrong elements: %+v", kept)
	}
}
