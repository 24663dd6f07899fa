package job

// Reorder moves the job ranked from to position to and renumbers the
// affected range. jobs must be sorted by Order ascending with ranks 1..n.
// The returned slice holds only jobs whose Order changed.
func Reorder(jobs []Job, from, to int) ([]Job, bool) {
	n := len(jobs)
	if from < 1 || from > n || to < 1 || to > n {
		return nil, false
	}
	if from == to {
		return nil, true
	}

	moved := jobs[from-1]
	rest := make([]Job, 0, n-1)
	rest = append(rest, jobs[:from-1]...)
	rest = append(rest, jobs[from:]...)

	result := make([]Job, 0, n)
	result = append(result, rest[:to-1]...)
	result = append(result, moved)
	result = append(result, rest[to-1:]...)

	changed := make([]Job, 0)
	for i := range result {
		rank := i + 1
		if result[i].Order != rank {
			result[i].Order = rank
			changed = append(changed, result[i])
		}
	}
	return changed, true
}
