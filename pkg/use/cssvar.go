package use

import (
	"github.com/vango-dev/usekit/pkg/host"
	"github.com/vango-dev/usekit/pkg/reactive"
)

// UseCssVar binds a ref to the root style variable name. Setting the ref
// updates the document and document updates flow back into the ref.
func UseCssVar(name string) *reactive.Ref[string] {
	doc := host.Current().Document
	ref := reactive.NewRef(doc.StyleVar(name))

	reactive.Watch(ref.Get, func(v, _ string) {
		doc.SetStyleVar(name, v)
	}, reactive.Lazy())

	unsubscribe := doc.OnStyleVar(func(c host.StyleVarChange) {
		if c.Name == name {
			ref.Set(c.Value)
		}
	})
	reactive.OnUnmounted(unsubscribe)

	return ref
}
