package main

// TODO:
// - Profiling (Benchmarking) !! https://blog.golang.org/pprof
// - APM/Tracing
func main() {
	startManual()
}
