package domain

// SchemaKind identifies one of the closed response shapes a completion must satisfy.
type SchemaKind int

const (
	SchemaQuestionSet SchemaKind = iota
	SchemaFollowUp
	SchemaSimulationTurn
	SchemaRiskSet

	schemaKindCount
)

// SchemaKinds returns every known kind in declaration order.
func SchemaKinds() []SchemaKind {
	kinds := make([]SchemaKind, 0, schemaKindCount)
	for k := SchemaKind(0); k < schemaKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is a declared kind.
func (k SchemaKind) Valid() bool {
	return k >= 0 && k < schemaKindCount
}

func (k SchemaKind) String() string {
	switch k {
	case SchemaQuestionSet:
		return "question_set"
	case SchemaFollowUp:
		return "follow_up"
	case SchemaSimulationTurn:
		return "simulation_turn"
	case SchemaRiskSet:
		return "risk_set"
	default:
		return "unknown"
	}
}
