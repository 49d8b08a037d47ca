package emit

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/vers"
)

// EmitParallel is the concurrent version of Emit. Per-version passes
// read the same immutable input tree and write only privately
// constructed output trees, so they fan out over a bounded worker pool
// with no shared mutable state. The contract is identical to Emit:
// output in registry order, empty results omitted, and any error
// aborts the whole emission with zero variants.
func EmitParallel(root decl.Node, reg *vers.Registry, opts Options, workers int) ([]Variant, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// For small registries, avoid goroutine overhead.
	if reg.Len() <= 2 || workers <= 1 {
		return Emit(root, reg, opts)
	}

	type slot struct {
		variant Variant
		ok      bool
	}

	results := make([]slot, reg.Len())

	errs := make([]error, reg.Len())

	var wg sync.WaitGroup

	sem := make(chan struct{}, workers)

	for i := 0; i < reg.Len(); i++ {
		wg.Add(1)

		sem <- struct{}{} // acquire semaphore slot

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }() // release slot
			defer func() {
				if r := recover(); r != nil {
					errs[idx] = fmt.Errorf("panic emitting variant %s: %v", reg.At(idx), r)
				}
			}()

			variant, ok, err := emitOne(root, reg, reg.At(idx), opts)
			if err != nil {
				errs[idx] = err
				return
			}

			results[idx] = slot{variant: variant, ok: ok}
		}(i)
	}

	wg.Wait()

	// Abort on the first error in registry order: no partial success.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	variants := make([]Variant, 0, reg.Len())

	for _, s := range results {
		if s.ok {
			variants = append(variants, s.variant)
		}
	}

	return variants, nil
}
