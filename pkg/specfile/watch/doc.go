// Package watch rebuilds a specification whenever its files change.
//
// Changes are debounced, so an editor writing a file in several steps
// triggers a single reload, and reloads never overlap. Each result,
// failed or not, is passed to the caller:
//
//	w, err := watch.New(files, func(ctx context.Context) (*specification.Specification, error) {
//	    return loader.Load(ctx, files...)
//	}, watch.WithDebounce(cfg.Watch.Debounce))
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	checker.RegisterCheck("specification", w.Check)
//	err = w.Watch(ctx, func(r watch.Result) { report(r) })
package watch
