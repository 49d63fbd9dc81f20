package harvest

// CombinationCount returns the size of the Cartesian product of optionSets.
// It is zero when there are no sets or any set is empty.
func CombinationCount(optionSets [][]Option) int {
	if len(optionSets) == 0 {
		return 0
	}
	n := 1
	for _, set := range optionSets {
		if len(set) == 0 {
			return 0
		}
		n *= len(set)
	}
	return n
}

// Plan returns the Cartesian product of optionSets in odometer order: the
// last control varies fastest. The same input always yields the same order.
func Plan(optionSets [][]Option) []Combination {
	return PlanN(optionSets, 0)
}

// PlanN is Plan stopped after the first limit combinations. limit <= 0
// means no limit. Only the returned combinations are allocated.
func PlanN(optionSets [][]Option, limit int) []Combination {
	total := CombinationCount(optionSets)
	if total == 0 {
		return nil
	}
	if limit > 0 && limit < total {
		total = limit
	}

	combos := make([]Combination, 0, total)
	idx := make([]int, len(optionSets))
	for {
		combo := make(Combination, len(optionSets))
		for i, set := range optionSets {
			combo[i] = set[idx[i]]
		}
		combos = append(combos, combo)
		if len(combos) == total {
			return combos
		}

		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(optionSets[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return combos
		}
	}
}
