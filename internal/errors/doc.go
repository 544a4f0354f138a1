// Package errors provides coded, actionable errors for usekit.
//
// Each error carries a code (e.g. "U001") registered with a category, a
// short message and a longer explanation. Callers add a suggestion or wrap
// an underlying cause:
//
//	err := errors.New("U003").
//	    WithDetail(`key "USE_SWR_CACHED_TIME_users" holds "abc"`).
//	    Wrap(decodeErr)
//
//	fmt.Println(err.Format())
//	// ERROR U003: Stored value could not be decoded
//	//
//	//   key "USE_SWR_CACHED_TIME_users" holds "abc"
//	//
//	//   Hint: Remove the key or write a JSON value of the hook's type.
//
// Errors compare by code with errors.Is, so a fresh New("U002") matches
// the exported sentinel for the same code.
package errors
