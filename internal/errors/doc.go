// Package errors provides structured, actionable error messages for modelview.
//
// Every lifecycle or per-request failure carries a stable code that maps to
// a registered template:
//
//   - lifecycle: problems surfaced synchronously to the caller of Serve
//     (missing model file, port already in use, failed remote fetch)
//   - asset: packaging defects discovered while answering a request
//   - request: any other fault while handling a single connection
//   - config: invalid or missing configuration files
//
// Codes compare with errors.Is, so callers can test for a class of failure
// without depending on the message text:
//
//	if errors.Is(err, errors.ErrModelNotFound) {
//	    // ...
//	}
//
// # Usage
//
//	err := errors.New(errors.CodeBindFailure).
//	    WithDetail("listen tcp 127.0.0.1:8080: bind: address already in use").
//	    WithSuggestion("Stop the other process or pass --port")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Cannot bind server address
//	//
//	//   listen tcp 127.0.0.1:8080: bind: address already in use
//	//
//	//   Hint: Stop the other process or pass --port
package errors
