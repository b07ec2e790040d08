// Package fs abstracts the filesystem calls used to persist arrays so that
// tests can inject write, sync and close failures.
//
// Production code uses fs.Default ([LocalFS]). Tests wrap it in a
// [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 1024})
//
// The calls are plain local syscalls and take no context.Context.
package fs
