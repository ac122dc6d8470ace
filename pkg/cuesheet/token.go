package cuesheet

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}

func trimRightSpace(s string) string {
	i := len(s)
	for i > 0 && isSpace(s[i-1]) {
		i--
	}
	return s[:i]
}

// nextToken returns the first token of line and the remainder past the
// whitespace that follows it. A token starting with a double quote runs to
// the matching unescaped quote, or to the end of the line if there is none,
// and is returned with its quotes. ok is false when only whitespace remains.
func nextToken(line string) (tok, rest string, ok bool) {
	line = trimLeftSpace(line)
	if line == "" {
		return "", "", false
	}

	end := len(line)
	if line[0] == '"' {
		for i := 1; i < len(line); i++ {
			if line[i] == '\\' {
				i++
				continue
			}
			if line[i] == '"' {
				end = i + 1
				break
			}
		}
	} else {
		for i := 1; i < len(line); i++ {
			if isSpace(line[i]) {
				end = i
				break
			}
		}
	}

	return line[:end], trimLeftSpace(line[end:]), true
}

// unquote strips one leading quote and unescapes backslash sequences up to
// the next unescaped quote. Text after that quote is dropped. Tokens without
// a leading quote are still unescaped.
func unquote(s string) string {
	if s != "" && s[0] == '"' {
		s = s[1:]
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			break
		}
		if c == '\\' {
			// A trailing lone backslash is dropped.
			if i+1 == len(s) {
				break
			}
			i++
			c = s[i]
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// closingQuote returns the index of the quote that closes the quoted string
// starting at s[0], or -1.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func isUpperWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
