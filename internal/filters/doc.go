// Package filters holds the built-in hooks of the document pipeline: the
// default new_post_path resolver, fenced code highlighting before rendering,
// and excerpt splitting and external link rewriting after rendering.
package filters
