// Package backend defines the document object provider boundary.
//
// The extraction pipeline never touches raw container bytes: cross-reference
// parsing, object streams, stream filters, and decryption are the job of a
// [Provider], which hands the interpreter already-decoded page dictionaries,
// content-stream bytes, font descriptions, and XObject data.
//
// The package ships one concrete provider, [PDFCPUBackend], built on
// github.com/pdfcpu/pdfcpu. The interpreter depends only on the [Provider]
// interface, so an alternate container library can be swapped in without
// touching the core.
//
// Errors at this boundary are document-level and fatal: a file that cannot
// be opened, a missing password, or a wrong password. They are exposed as
// sentinel errors ([ErrParse], [ErrPasswordRequired], [ErrInvalidPassword])
// matchable with errors.Is.
package backend
