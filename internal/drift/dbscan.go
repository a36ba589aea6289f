package drift

// clusterLabels assigns density-based cluster ids to one-dimensional
// points. Noise points keep the label -1. eps bounds the neighborhood
// distance and minSamples is the density floor for a core point.
// Labels are never reassigned once a point joins a cluster.
func clusterLabels(points []float64, eps float64, minSamples int) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	next := 0
	for i := range points {
		if labels[i] >= 0 {
			continue
		}
		neighbors := neighborsOf(points, i, eps)
		if len(neighbors) < minSamples {
			continue
		}

		labels[i] = next
		queue := append([]int(nil), neighbors...)
		for head := 0; head < len(queue); head++ {
			p := queue[head]
			if labels[p] >= 0 {
				continue
			}
			labels[p] = next

			reach := neighborsOf(points, p, eps)
			if len(reach) < minSamples {
				continue
			}
			for _, r := range reach {
				if labels[r] < 0 && !intsContain(queue, r) {
					queue = append(queue, r)
				}
			}
		}
		next++
	}
	return labels
}

func neighborsOf(points []float64, i int, eps float64) []int {
	var out []int
	for j, v := range points {
		d := points[i] - v
		if d < 0 {
			d = -d
		}
		if d <= eps {
			out = append(out, j)
		}
	}
	return out
}

func intsContain(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
