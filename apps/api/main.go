package main

// TODO:
// - Profiling (Benchmarking) !! https://blog.golang.org/pprof
// - CSRF once the API is served beyond localhost
func main() {
	startWithDig()
}
