// Package errors provides the classified error primitives used across sitepress.
//
// Every failure that leaves the content core is a *ClassifiedError carrying a
// category (input, not_found, consistency or one of the collaborator
// categories), a severity, a retry hint and a small context map (slug, path,
// hook name) so that callers can diagnose a failure without inspecting internals.
//
// Example usage:
//
//	err := errors.NotFoundError("draft does not exist").
//		WithContext("slug", slug).
//		Build()
package errors
