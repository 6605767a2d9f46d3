package agent

// Plan is the result of an OR node: either Leaf, where the search stopped
// and the belief is valued directly, or a *Decision.
type Plan interface {
	isPlan()
}

// Leaf carries no action. The search stopped at the depth limit or at a
// finished game.
type Leaf struct{}

// Decision picks Column and lists the sub-plan for every belief state the
// opponent's reply can lead to. Branches is empty when the AND node below
// was cut off; Value is then the one-ply score of the move.
type Decision struct {
	Column   int
	Value    float64
	Branches []Branch
}

// Branch pairs a reachable belief state with the plan for it.
type Branch struct {
	Belief *BeliefState
	Plan   Plan
}

func (Leaf) isPlan()      {}
func (*Decision) isPlan() {}

// PlanDepth returns the number of decisions on the deepest line of p.
func PlanDepth(p Plan) int {
	d, ok := p.(*Decision)
	if !ok || d == nil {
		return 0
	}
	deepest := 0
	for _, br := range d.Branches {
		if n := PlanDepth(br.Plan); n > deepest {
			deepest = n
		}
	}
	return 1 + deepest
}
