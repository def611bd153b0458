// Command console-monitor drives a console monitor through its lifecycle:
// the deterministic Close path, the forgotten-Close path reclaimed by the
// runtime cleanup, or an interactive stepper.
package main

func main() {
	Execute()
}
