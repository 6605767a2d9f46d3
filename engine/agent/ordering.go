package agent

// SortMoves returns moves ordered by descending one-ply score: the
// evaluation of ApplyAction(column) before any opponent reply. It is a
// stable insertion sort, so columns with equal scores keep their input
// order. moves is not modified.
func SortMoves(s *BeliefState, moves []int, eval Evaluator) ([]int, error) {
	keys := make(map[int]float64, len(moves))
	for _, col := range moves {
		if _, ok := keys[col]; ok {
			continue
		}
		out, err := s.ApplyAction(col)
		if err != nil {
			return nil, err
		}
		keys[col] = eval.ScoreOutcomes(out)
	}

	sorted := make([]int, len(moves))
	copy(sorted, moves)
	for i := 1; i < len(sorted); i++ {
		col := sorted[i]
		j := i - 1
		for j >= 0 && keys[sorted[j]] < keys[col] {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = col
	}
	return sorted, nil
}
