package main

var ok string = "fine"

var bad int = "not a number"

func main() {
	_ = ok
	_ = bad
}
