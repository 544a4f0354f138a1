package reactive

// Batch groups Ref writes into a single notification phase. Listeners
// touched inside fn are deduplicated and notified once when the outermost
// batch returns.
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	ctx := currentContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			flushPending(ctx)
		}
	}()

	fn()
}

func flushPending(ctx *trackingContext) {
	updates := ctx.pending
	ctx.pending = nil
	if len(updates) == 0 {
		releaseContext(ctx)
		return
	}

	seen := make(map[uint64]struct{}, len(updates))
	for _, l := range updates {
		if _, ok := seen[l.ID()]; ok {
			continue
		}
		seen[l.ID()] = struct{}{}
		l.MarkDirty()
	}
	releaseContext(ctx)
}

// Untracked runs fn without subscribing the current listener to anything
// read inside it. For a single Ref prefer Peek.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
