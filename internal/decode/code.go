package decode

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/tetratelabs/wasmdecode/ir"
)

// decodeCode lowers every staged function body concurrently, then splices
// the results back into d.mod.Functions and d.offsets in funcIdx order.
// Each body decodes from disjoint data (its own byte slice, its own
// typeTable read-only lookups), so the only shared mutable state is the
// position-indexed results slice each worker writes its own slot of —
// the splice step is deterministic regardless of how the goroutines are
// scheduled.
func decodeCode(d *moduleDecoder) error {
	if len(d.pendingCode) == 0 {
		return nil
	}

	results := make([]struct {
		code *ir.Code
		err  error
	}, len(d.pendingCode))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(d.pendingCode) {
		workers = len(d.pendingCode)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				entry := d.pendingCode[i]
				code, err := decodeFunctionBody(entry.body, &d.types)
				results[i].code = code
				if err != nil {
					results[i].err = structural(fmt.Sprintf("function %d body", entry.funcIdx), err)
				}
			}
		}()
	}
	for i := range d.pendingCode {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, entry := range d.pendingCode {
		if results[i].err != nil {
			return results[i].err
		}
		d.mod.Functions[entry.funcIdx].Code = results[i].code
		d.recordFunctionOffset(entry.funcIdx, entry.offset)
	}
	return nil
}

// decodeFunctionBody lowers one function body: its run-length-encoded
// local declarations, followed by its instruction sequence up to the
// closing `end`.
func decodeFunctionBody(body []byte, types *typeTable) (*ir.Code, error) {
	r := newReader(body)

	groupCount, err := r.u32()
	if err != nil {
		return nil, structural("local group count", err)
	}
	var locals []ir.Local
	for i := uint32(0); i < groupCount; i++ {
		n, err := r.u32()
		if err != nil {
			return nil, structural("local group size", err)
		}
		b, err := r.byte()
		if err != nil {
			return nil, structural("local group type", err)
		}
		vt, err := convertValType(b)
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < n; j++ {
			locals = append(locals, ir.Local{Type: vt})
		}
	}

	instrs, err := decodeExpr(r, types)
	if err != nil {
		return nil, structural("body", err)
	}
	if !r.atEnd() {
		return nil, structuralf("trailing bytes after function body")
	}
	return &ir.Code{Locals: locals, Body: instrs}, nil
}
