package search

// FieldType is the semantic type of a logical index field.
type FieldType int

const (
	// TypeString holds exact values such as keys, names and tags.
	TypeString FieldType = iota
	// TypeText holds free text that is stored verbatim.
	TypeText
	TypeBoolean
	TypeNumeric
	TypeDate
	// TypeObject is a nested sub-document with its own fields.
	TypeObject
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeText:
		return "TEXT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeNumeric:
		return "NUMERIC"
	case TypeDate:
		return "DATE"
	case TypeObject:
		return "OBJECT"
	default:
		return "UNKNOWN"
	}
}

// Sub-field suffixes of a multi-field group. Callers query a facet of a
// logical field as "<field>.<suffix>".
const (
	SortSuffix          = "sort"
	SearchWordsSuffix   = "words"
	SearchPartialSuffix = "grams"
)

// IndexField describes one logical field of an indexed document.
// Values are built once at startup and never mutated afterwards.
//
// Sortable and Searchable only apply to TypeString and TypeText fields;
// NestedFields is only set for TypeObject fields.
type IndexField struct {
	Name         string
	Type         FieldType
	Sortable     bool
	Searchable   bool
	NestedFields []IndexField
}

// NewField returns a plain field without sort or search sub-fields.
func NewField(name string, typ FieldType) IndexField {
	return IndexField{Name: name, Type: typ}
}

// NewSortableField returns a STRING or TEXT field with a sort sub-field.
func NewSortableField(name string, typ FieldType) IndexField {
	return IndexField{Name: name, Type: typ, Sortable: true}
}

// NewSearchableField returns a STRING or TEXT field with search sub-fields.
func NewSearchableField(name string, typ FieldType) IndexField {
	return IndexField{Name: name, Type: typ, Searchable: true}
}

// NewObjectField returns a nested object field.
func NewObjectField(name string, nested ...IndexField) IndexField {
	return IndexField{Name: name, Type: TypeObject, NestedFields: nested}
}
