package records

// OneRepMax estimates a one-rep max with the Brzycki formula. The formula
// only holds for 1..35 reps; outside that range the weight is returned as is.
func OneRepMax(weight float64, reps int) float64 {
	if reps <= 0 || reps >= 36 {
		return weight
	}
	return weight * 36 / (37 - float64(reps))
}
