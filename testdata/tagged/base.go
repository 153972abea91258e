package tagged

// Base returns its argument.
func Base(x int) int { return x }
