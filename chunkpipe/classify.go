package chunkpipe

// Classify tags an element for downstream dispatch. The returned bool
// reports whether the element will produce chunks; unrecognized kinds
// and kind/payload mismatches (a table element without a grid) are not
// emittable.
func Classify(el Element) (Kind, bool) {
	switch el.Kind {
	case KindText, KindHeading, KindListItem, KindFormField:
		return el.Kind, true
	case KindTable:
		return KindTable, el.Table != nil
	case KindPicture:
		return KindPicture, true
	default:
		return KindUnsupported, false
	}
}

// filter returns only the elements that will produce chunks. It runs
// before the assembler is created, so a dropped element can never
// consume a sequence index.
func filter(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if _, ok := Classify(el); ok {
			out = append(out, el)
		}
	}
	return out
}
