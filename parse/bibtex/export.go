package bibtex

// FieldRecord and BlockRecord are flat views of blocks for JSON and YAML
// output.
type FieldRecord struct {
	Key       string `json:"key" yaml:"key"`
	Value     string `json:"value" yaml:"value"`
	StartLine int    `json:"start_line" yaml:"start_line"`
}

type BlockRecord struct {
	Kind          BlockKind     `json:"kind" yaml:"kind"`
	StartLine     int           `json:"start_line" yaml:"start_line"`
	EntryType     string        `json:"entry_type,omitempty" yaml:"entry_type,omitempty"`
	Key           string        `json:"key,omitempty" yaml:"key,omitempty"`
	Value         string        `json:"value,omitempty" yaml:"value,omitempty"`
	Comment       string        `json:"comment,omitempty" yaml:"comment,omitempty"`
	Fields        []FieldRecord `json:"fields,omitempty" yaml:"fields,omitempty"`
	DuplicateKeys []string      `json:"duplicate_keys,omitempty" yaml:"duplicate_keys,omitempty"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
	Raw           string        `json:"raw" yaml:"raw"`
}

func ToRecord(b Block) BlockRecord {
	r := BlockRecord{Kind: b.Kind(), StartLine: b.StartLine(), Raw: b.Raw()}
	switch b := b.(type) {
	case *Entry:
		fillEntry(&r, b)
	case *DuplicateFieldKeyBlock:
		fillEntry(&r, b.Entry())
		r.DuplicateKeys = b.DuplicateKeys()
	case *String:
		r.Key = b.Key()
		r.Value = b.Value()
	case *Preamble:
		r.Value = b.Value()
	case *ExplicitComment:
		r.Comment = b.Comment()
	case *ImplicitComment:
		r.Comment = b.Comment()
	case *ParsingFailedBlock:
		r.Error = b.Err().Error()
	}
	return r
}

func ToRecords(lib *Library) []BlockRecord {
	out := make([]BlockRecord, 0, lib.Len())
	for _, b := range lib.Blocks() {
		out = append(out, ToRecord(b))
	}
	return out
}

func fillEntry(r *BlockRecord, e *Entry) {
	r.EntryType = e.EntryType()
	r.Key = e.Key()
	for _, f := range e.fields {
		r.Fields = append(r.Fields, FieldRecord{Key: f.Key(), Value: f.Value(), StartLine: f.StartLine()})
	}
}
