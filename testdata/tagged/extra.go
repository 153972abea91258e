//go:build extra

package tagged

var Extra string = "on"
