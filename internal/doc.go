// Package internal runs the query-key migration over JavaScript and
// TypeScript files.
//
// Key components:
//
// Engine: runs the configured passes over one file. Each pass parses the
// current source, lets the locators find matching call sites, hands them
// to a transform.Replacer and renders the queued edits. The output of a
// pass is the input of the next one. Diagnostics found by later passes are
// mapped back onto the original source.
//
// Cache: remembers results per file, keyed by the content hash and the
// engine configuration.
//
// Watcher: migrates files again whenever they are saved.
//
// SourceCode: the content of a source file as a collection of lines, used
// when rendering diagnostics.
//
// Usage:
//
//	engine, err := internal.NewEngine("", transform.DefaultPasses(), logger)
//	if err != nil {
//	    // handle error
//	}
//
//	res, err := engine.Run("src/todos.tsx")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range res.Issues {
//	    fmt.Printf("%s: %s\n", issue.Start, issue.Message)
//	}
package internal
