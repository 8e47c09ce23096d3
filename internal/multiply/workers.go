package multiply

// workerCount returns min(work / MinWorkPerThread, Workers), at least 1.
//
// Parameters:
//   - work: The number of term-by-term products of the call.
//   - opts: Normalized options.
//
// Returns:
//   - int: The number of workers to start.
func workerCount(work uint64, opts Options) int {
	n := work / opts.MinWorkPerThread
	if n > uint64(opts.Workers) {
		n = uint64(opts.Workers)
	}
	return int(max(n, 1))
}
