package sexp

import "strings"

// Pretty renders v across several lines, breaking any list whose one-line
// form would exceed width columns.
func Pretty(v Value, width int) string {
	var sb strings.Builder
	pretty(&sb, v, 0, width)
	return sb.String()
}

func pretty(sb *strings.Builder, v Value, indent, width int) {
	l, ok := v.(List)
	flat := v.String()
	if !ok || len(l) < 2 || indent+len(flat) <= width {
		sb.WriteString(flat)
		return
	}
	sb.WriteByte('[')
	sb.WriteString(l[0].String())
	for _, item := range l[1:] {
		sb.WriteString(",\n")
		sb.WriteString(strings.Repeat(" ", indent+1))
		pretty(sb, item, indent+1, width)
	}
	sb.WriteByte(']')
}
