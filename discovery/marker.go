package discovery

import (
	"bufio"
	"bytes"
	"regexp"

	"github.com/knadh/koanf/parsers/json"
)

var markerExp = regexp.MustCompile(`^\s*(#|//|/\*)\s*inject\b\s*(\*/)?`)

// HasMarker reports whether the first non-blank line of src is an inject
// marker comment.
func HasMarker(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return markerExp.Match(line)
	}
	return false
}

func hasJSONMarker(src []byte) bool {
	m, err := json.Parser().Unmarshal(src)
	if err != nil {
		return false
	}
	v, ok := m["inject"].(bool)
	return ok && v
}
