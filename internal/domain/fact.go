package domain

import (
	"sort"
	"time"
)

// Field is a member of the closed fact vocabulary.
type Field string

const (
	FieldAge        Field = "age"
	FieldIncome     Field = "income"
	FieldGender     Field = "gender"
	FieldCategory   Field = "category"
	FieldState      Field = "state"
	FieldArea       Field = "area"
	FieldOccupation Field = "occupation"
	FieldDisability Field = "disability"
	FieldBPL        Field = "bpl"
)

// AllFields lists the writable fields in display order.
var AllFields = []Field{
	FieldAge,
	FieldIncome,
	FieldGender,
	FieldCategory,
	FieldState,
	FieldArea,
	FieldOccupation,
	FieldDisability,
	FieldBPL,
}

func ValidField(s string) bool {
	for _, f := range AllFields {
		if string(f) == s {
			return true
		}
	}
	return false
}

// FactSource records who produced a value.
type FactSource string

const (
	SourceUser       FactSource = "user"
	SourceInferred   FactSource = "inferred"
	SourceTool       FactSource = "tool"
	SourceResolution FactSource = "resolution"
)

// Confirms reports whether a write from this source marks the fact confirmed.
func (s FactSource) Confirms() bool {
	return s == SourceUser || s == SourceResolution
}

type FactRevision struct {
	Value  any        `json:"value"`
	Source FactSource `json:"source"`
	At     time.Time  `json:"at"`
}

type Fact struct {
	Field     Field          `json:"field"`
	Value     any            `json:"value"`
	Confirmed bool           `json:"confirmed"`
	History   []FactRevision `json:"history"`
}

// Facts is a flat field to value snapshot.
type Facts map[Field]any

func (f Facts) Has(field Field) bool {
	_, ok := f[field]
	return ok
}

// Merge returns a copy of f overlaid with other. Values in other win.
func (f Facts) Merge(other Facts) Facts {
	out := make(Facts, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Fields returns the populated fields in vocabulary order.
func (f Facts) Fields() []Field {
	out := make([]Field, 0, len(f))
	for _, field := range AllFields {
		if _, ok := f[field]; ok {
			out = append(out, field)
		}
	}
	return out
}

// Inputs flattens the snapshot into a tool input map.
func (f Facts) Inputs() map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[string(k)] = v
	}
	return out
}

// SortFields orders fields by their position in AllFields, unknown names last.
func SortFields(fields []string) {
	rank := make(map[string]int, len(AllFields))
	for i, f := range AllFields {
		rank[string(f)] = i
	}
	sort.SliceStable(fields, func(i, j int) bool {
		ri, okI := rank[fields[i]]
		rj, okJ := rank[fields[j]]
		switch {
		case okI && okJ:
			return ri < rj
		case okI:
			return true
		case okJ:
			return false
		default:
			return fields[i] < fields[j]
		}
	})
}
