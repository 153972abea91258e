package main

// Threshold is the level under which an item needs restocking.
const Threshold = 5

// Low lists the items below Threshold.
func Low(inv *Inventory) []string {
	var out []string
	for name, qty := range inv.Items {
		if qty < Threshold {
			out = append(out, name)
		}
	}
	return out
}
