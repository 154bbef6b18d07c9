package retrieval

// TopKForSize maps a project's context-size setting to the total context
// budget. Unrecognized values fall back to medium.
func TopKForSize(size string) int {
	switch size {
	case "low":
		return 10
	case "high":
		return 20
	default:
		return 15
	}
}

// ShareRule controls the minimum project-source share after allocation:
// minProject = max(Floor, topK/Divisor).
type ShareRule struct {
	Floor   int
	Divisor int
}

func (r ShareRule) minProject(topK int) int {
	floor := r.Floor
	if floor <= 0 {
		floor = 3
	}
	divisor := r.Divisor
	if divisor <= 0 {
		divisor = 3
	}
	share := topK / divisor
	if share < floor {
		return floor
	}
	return share
}

// Allocate walks ranked passages in order, routing each into the project or
// kb bucket by origin, stopping at topK total. It then enforces the minimum
// project share by moving items from the front of the kb bucket, which keeps
// a knowledge-base-heavy ranking from starving project-specific grounding.
func Allocate(ranked []Passage, topK int, rule ShareRule) (project, kb []Passage) {
	for _, p := range ranked {
		if len(project)+len(kb) >= topK {
			break
		}
		if p.Meta.Ref().Kind == KindKB {
			kb = append(kb, p)
		} else {
			project = append(project, p)
		}
	}

	min := rule.minProject(topK)
	if len(project) < min && len(kb) > 0 {
		needed := min - len(project)
		if needed > len(kb) {
			needed = len(kb)
		}
		project = append(project, kb[:needed]...)
		kb = kb[needed:]
	}
	return project, kb
}
