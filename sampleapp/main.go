package main

import (
	"fmt"
	"strings"
)

// Inventory tracks stock per item.
type Inventory struct {
	Items map[string]int
	Owner string
}

// Restock adds qty units of name.
func (inv *Inventory) Restock(name string, qty int) int {
	inv.Items[name] += qty
	total := inv.Items[name]
	return total
}

func main() {
	inv := &Inventory{Items: map[string]int{}, Owner: "ada"}
	n := inv.Restock("bolts", 3)
	label := strings.ToUpper(inv.Owner)
	fmt.Println(label, n)
}
