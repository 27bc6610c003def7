package pattern

// Predicate is the sum type dual to Pattern: predicates evaluate to a
// boolean rather than binding a target, and appear in `where`/`if`
// clauses and predicate definitions.
type Predicate interface {
	predicateNode()
}

// PredAnd succeeds iff every child predicate succeeds.
type PredAnd struct{ Predicates []Predicate }

func (*PredAnd) predicateNode() {}

// PredOr succeeds on the first child predicate that succeeds.
type PredOr struct{ Predicates []Predicate }

func (*PredOr) predicateNode() {}

// PredAny is PredOr with "non-exclusive" evaluation-order semantics.
type PredAny struct{ Predicates []Predicate }

func (*PredAny) predicateNode() {}

// PredNot succeeds iff Inner fails.
type PredNot struct{ Inner Predicate }

func (*PredNot) predicateNode() {}

// PredMaybe always succeeds; restores state if Inner fails.
type PredMaybe struct{ Inner Predicate }

func (*PredMaybe) predicateNode() {}

// PredIf is the predicate-level conditional.
type PredIf struct {
	Predicate Predicate
	Then      Predicate
	Else      Predicate
}

func (*PredIf) predicateNode() {}

// PredMatch matches Value (a resolved pattern) against Target.
type PredMatch struct {
	Target Pattern
	Value  Pattern
}

func (*PredMatch) predicateNode() {}

// PredEqual succeeds iff Left and Right resolve to equivalent bindings.
type PredEqual struct {
	Left  Pattern
	Right Pattern
}

func (*PredEqual) predicateNode() {}

// PredAssignment is the predicate-context counterpart of Assignment.
type PredAssignment struct {
	Target Container
	Value  Pattern
}

func (*PredAssignment) predicateNode() {}

// PredAccumulate is the predicate-context counterpart of Accumulate.
type PredAccumulate struct {
	Target Container
	Value  Pattern
}

func (*PredAccumulate) predicateNode() {}

// PredCall invokes a PredicateDefinition.
type PredCall struct {
	DefinitionIndex int
	Args            []Pattern
}

func (*PredCall) predicateNode() {}

// PredTrue always succeeds.
type PredTrue struct{}

func (PredTrue) predicateNode() {}

// PredFalse always fails.
type PredFalse struct{}

func (PredFalse) predicateNode() {}

// PredRewrite is the predicate-context counterpart of Rewrite.
type PredRewrite struct {
	LHS        Pattern
	RHS        Pattern
	Annotation string
}

func (*PredRewrite) predicateNode() {}

// PredReturn evaluates Value and makes it the enclosing
// FunctionDefinition's result.
type PredReturn struct{ Value Pattern }

func (*PredReturn) predicateNode() {}

// PredLog is the predicate-context counterpart of Log.
type PredLog struct {
	Level   int
	Message Pattern
}

func (*PredLog) predicateNode() {}
