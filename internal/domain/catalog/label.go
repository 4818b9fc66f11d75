package catalog

// Label is a human-readable caption pair for a catalog column, sourced
// from the external metadata-set service.
type Label struct {
	Caption    string
	AltCaption string
}

// LabelSet maps column names to their display labels.
type LabelSet map[string]Label

// Resolve returns the label for a column name, falling back to the name
// itself when the metadata set carries no caption for it.
func (ls LabelSet) Resolve(name string) Label {
	if l, ok := ls[name]; ok && l.Caption != "" {
		return l
	}
	return Label{Caption: name}
}
