package api

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// trackEvent writes a usage event to the log as key=value pairs.
func trackEvent(name string, props map[string]any) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		if s, ok := props[k].(string); ok {
			fmt.Fprintf(&b, " %s=%q", k, s)
		} else {
			fmt.Fprintf(&b, " %s=%v", k, props[k])
		}
	}
	log.Printf("event=%s%s", name, b.String())
}
