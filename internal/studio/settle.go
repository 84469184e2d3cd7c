package studio

import "sync"

// Result is the outcome of one settle-all branch.
type Result struct {
	Index int
	Err   error
}

// SettleAll runs fn for every index concurrently and waits for all of
// them. A failing branch never cancels or hides its siblings.
func SettleAll(n int, fn func(i int) error) []Result {
	out := make([]Result, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			out[i] = Result{Index: i, Err: fn(i)}
		}(i)
	}
	wg.Wait()
	return out
}

// Failed counts the branches that returned an error.
func Failed(rs []Result) int {
	n := 0
	for _, r := range rs {
		if r.Err != nil {
			n++
		}
	}
	return n
}
