package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint computes the content fingerprint of a document.
//
// The fingerprint field itself is excluded, keys are serialized in sorted
// order and a single trailing newline of the YAML block is trimmed before
// hashing, so that re-serializing a document does not change its fingerprint.
func Fingerprint(fields *Fields, body string) (string, error) {
	forHash := make(map[string]any, fields.Len())
	for _, k := range fields.Keys() {
		if k == mdfp.FingerprintField {
			continue
		}
		forHash[k], _ = fields.Get(k)
	}

	serialized := ""
	if len(forHash) > 0 {
		out, err := stringifyYAML(FieldsFromMap(forHash))
		if err != nil {
			return "", err
		}
		serialized = strings.TrimSuffix(out, "\n")
	}
	return mdfp.CalculateFingerprintFromParts(serialized, body), nil
}

// FingerprintDocument parses text and fingerprints it.
func FingerprintDocument(text string) (string, error) {
	fields, body, err := ParseDocument(text)
	if err != nil {
		return "", err
	}
	return Fingerprint(fields, body)
}
