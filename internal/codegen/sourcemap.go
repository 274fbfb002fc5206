package codegen

import (
	"strings"

	"github.com/tidwall/sjson"
)

// base64VLQ is the alphabet used by the source-map v3 "mappings" field.
const base64VLQ = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ appends the base64-VLQ encoding of n to sb, per the source
// map v3 spec: the sign goes in the low bit, five bits per digit, a
// continuation bit in the sixth.
func encodeVLQ(sb *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 0x1f
		v >>= 5
		if v > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64VLQ[digit])
		if v == 0 {
			break
		}
	}
}

// BuildSourceMap assembles a standard source-map v3 JSON document mapping
// every line of generated text 1:1 to the corresponding source line (the
// emitter does not yet track finer-grained column mappings, so each
// generated line opens with a single segment pointing at column 0 of the
// same line number in the source). The document is assembled field by
// field with sjson.Set, matching the pack's preference for tidwall's JSON
// builder over encoding/json struct marshaling for semi-structured JSON.
func BuildSourceMap(sourceFile, generatedFile, sourceContent string) (string, error) {
	lineCount := strings.Count(sourceContent, "\n") + 1

	var mappings strings.Builder
	for line := 0; line < lineCount; line++ {
		if line > 0 {
			mappings.WriteByte(';')
		}
		// One segment per line: [genCol, sourceIndex, srcLine, srcCol], all
		// deltas from the previous segment's fields (first segment is
		// absolute since the previous values default to zero).
		encodeVLQ(&mappings, 0) // generated column, always 0: one segment per line
		encodeVLQ(&mappings, 0) // source file index, always 0: single source
		delta := 1
		if line == 0 {
			delta = 0
		}
		encodeVLQ(&mappings, delta) // source line delta: 0 for the first line, then advance by one
		encodeVLQ(&mappings, 0) // source column, always 0
	}

	doc := "{}"
	var err error
	if doc, err = sjson.Set(doc, "version", 3); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "file", generatedFile); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "sources", []string{sourceFile}); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "sourcesContent", []string{sourceContent}); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "names", []string{}); err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "mappings", mappings.String()); err != nil {
		return "", err
	}

	return doc, nil
}
