package repository

// Predicate is a store-agnostic boolean filter expression: a conjunction of
// clauses, each clause a disjunction of field conditions. The filter builder
// in the service layer produces it; only this package translates it to SQL.
type Predicate struct {
	All []Clause
}

// Clause is a group of OR-combined conditions.
type Clause struct {
	Any []Condition
}

// Condition is a single field comparison.
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

type Op string

const (
	OpEq       Op = "eq"        // field = value
	OpLike     Op = "like"      // case-insensitive substring match
	OpGTE      Op = "gte"       // field >= value (inclusive)
	OpLTE      Op = "lte"       // field <= value (inclusive)
	OpIn       Op = "in"        // field IN (values)
	OpNotFalse Op = "not_false" // field is null or true
	OpTagAny   Op = "tag_any"   // any of the requested tags is present
)

// And appends a clause of OR-combined conditions.
func (p *Predicate) And(conds ...Condition) {
	if len(conds) == 0 {
		return
	}
	p.All = append(p.All, Clause{Any: conds})
}

func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func Like(field, value string) Condition {
	return Condition{Field: field, Op: OpLike, Value: value}
}

func GTE(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpGTE, Value: value}
}

func LTE(field string, value interface{}) Condition {
	return Condition{Field: field, Op: OpLTE, Value: value}
}

func In(field string, values interface{}) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

func NotFalse(field string) Condition {
	return Condition{Field: field, Op: OpNotFalse}
}

func TagAny(tags []string) Condition {
	return Condition{Field: "tags", Op: OpTagAny, Value: tags}
}

// Sort names the order of a page fetch. Field must be a column the builder
// whitelisted; Desc flips the direction.
type Sort struct {
	Field string
	Desc  bool
}

// VenueQuery is one paged retrieval against the venue store.
type VenueQuery struct {
	Predicate Predicate
	Sort      Sort
	Page      int // 1-based
	Limit     int
}
