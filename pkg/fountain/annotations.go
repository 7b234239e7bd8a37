package fountain

import (
	"regexp"
	"strings"
)

// annotationRe matches [[key]] and [[key:value]].
var annotationRe = regexp.MustCompile(`\[\[([a-z][a-z-]*)(?::([^\]]*))?\]\]`)

// pageBreakRe matches a Fountain page break.
var pageBreakRe = regexp.MustCompile(`^={3,}\s*$`)

type annotation struct {
	key, value string
}

// splitAnnotations returns line with every annotation removed, plus the
// annotations in order of appearance.
func splitAnnotations(line string) (string, []annotation) {
	var anns []annotation
	for _, m := range annotationRe.FindAllStringSubmatch(line, -1) {
		anns = append(anns, annotation{key: m[1], value: strings.TrimSpace(m[2])})
	}
	rest := annotationRe.ReplaceAllString(line, "")
	return strings.TrimSpace(rest), anns
}

var valueReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "]", "")

// annotate renders [[key:value]]. Values are flattened to a single line and
// may not contain a closing bracket.
func annotate(key, value string) string {
	if value == "" {
		return "[[" + key + "]]"
	}
	return "[[" + key + ":" + valueReplacer.Replace(value) + "]]"
}

// needsEscape reports whether a script line would be read back as syntax.
func needsEscape(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '!', '#', '=', '.', '@':
		return true
	}
	rest, anns := splitAnnotations(line)
	return len(anns) > 0 && rest == ""
}

// titleKeyRe matches a title page entry like "Title: x".
var titleKeyRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*(.*)$`)
