package templates

import (
	"strconv"
	"strings"
)

func prefixedStrings(prefix string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// typedArgs renders "arg0 T0, arg1 T1, ...".
func typedArgs(count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString("arg")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" T")
		sb.WriteString(strconv.Itoa(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}
