// Package tmpl renders the small tag language used inside posts and scaffolds.
//
// Supported syntax:
//
//	{{ name }}                     variable, dotted paths allowed; unknown names render empty
//	{{ name | upper | default("x") }}  filters
//	{% tag args %}                 inline tag from the TagRegistry
//	{% tag args %}…{% endtag %}    block tag; the rendered body is passed to the tag
//	{% raw %}…{% endraw %}         verbatim text
//	{# comment #}                  dropped
//
// Templates are compiled to text/template and executed with a per-call
// function map. Tag output is returned from template functions and is never
// evaluated again.
package tmpl
