// Package escape protects fragile regions of post content from a content renderer.
//
// Before a post body is handed to a renderer such as a Markdown processor, the
// Escaper swaps highlighted code blocks and template tags ({{ … }}, {% … %})
// for opaque placeholders and remembers the original text in a Table. After
// rendering, the placeholders are replaced by the remembered text again.
// Template comments ({# … #}) are dropped during escaping.
//
// One Escaper (and therefore one Table) belongs to exactly one render call.
// Every placeholder index can be restored once; restoring an unknown or
// already consumed index is reported as a consistency error.
package escape
