// Package logging wraps the standard log.Logger with per-component prefixes
// and structured key=value suffixes, the shape every component in this
// repo logs in rather than a structured-logging library.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// New returns a component-scoped logger writing to out (os.Stdout if nil)
// with a bracketed prefix, e.g. "[supervisor] ".
func New(component string, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stdout
	}
	return log.New(out, "["+component+"] ", log.LstdFlags)
}

// Fields formats key=value pairs for a log line's structured suffix, e.g.
// Fields("player_id", 7, "container", "c-1") -> "player_id=7 container=c-1".
// Arguments come in alternating key/value pairs; an odd final argument is
// rendered as a bare value.
func Fields(kv ...interface{}) string {
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i+1 < len(kv) {
			fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, "%v", kv[i])
		}
	}
	return b.String()
}
