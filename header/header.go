// Package header parses the text headers of an SSDP-style datagram. It
// mirrors the zero-copy packet-buffer contract of the original engine (see
// SPEC_FULL.md §4.1): New copies the datagram bytes once into an immutable
// string (NewString takes an existing string as is), and every lookup
// after that, including the trimmed header value it hands back, is a slice
// of that string rather than a new allocation.
package header

import "strings"

const crlf = "\r\n"

// Packet is an immutable, borrowed view over a single received datagram.
// The zero value is not usable; build one with New.
type Packet struct {
	buf string

	maxLine    int
	maxLineSet bool
}

// New builds a Packet over buf. Leading spaces before the first line are
// skipped, per the packet-buffer contract.
func New(buf []byte) *Packet {
	return NewString(string(buf))
}

// NewString is New for callers that already own a string.
func NewString(buf string) *Packet {
	return &Packet{buf: strings.TrimLeft(buf, " ")}
}

// IsSearchRequest reports whether the packet's first line is an M-SEARCH
// request.
func (p *Packet) IsSearchRequest() bool {
	return strings.HasPrefix(p.buf, "M-SEARCH")
}

// IsSearchResponse reports whether the packet's first line is an
// HTTP/1.1 status line. The reason phrase is not validated; callers that
// care whether it is specifically "200 OK" check that themselves.
func (p *Packet) IsSearchResponse() bool {
	return strings.HasPrefix(p.buf, "HTTP/1.1")
}

// HasNextLine reports whether a non-empty line exists starting at cursor.
func (p *Packet) HasNextLine(cursor int) bool {
	if cursor < 0 || cursor >= len(p.buf) {
		return false
	}
	rest := p.buf[cursor:]
	idx := strings.Index(rest, crlf)
	return idx > 0
}

// GetNextLine copies the line starting at cursor (up to but excluding the
// terminating CRLF) and returns a cursor positioned past the CRLF, with any
// leading spaces of the following line skipped. ok is false if no CRLF
// follows cursor.
func (p *Packet) GetNextLine(cursor int) (line string, next int, ok bool) {
	if cursor < 0 || cursor > len(p.buf) {
		return "", cursor, false
	}
	rest := p.buf[cursor:]
	idx := strings.Index(rest, crlf)
	if idx < 0 {
		return "", cursor, false
	}
	line = rest[:idx]
	next = cursor + idx + len(crlf)
	for next < len(p.buf) && p.buf[next] == ' ' {
		next++
	}
	return line, next, true
}

// HeaderValue returns the value of header name, trimmed of leading and
// trailing spaces. Matching is byte-exact and only recognized at line
// start: a line matches iff it begins with name and the next byte is ':'
// or ' '. If more than one line matches, the last one wins — this quirk of
// the original engine is intentionally preserved (SPEC_FULL.md §9).
func (p *Packet) HeaderValue(name string) (string, bool) {
	value, found := "", false
	cursor := 0
	for {
		line, next, ok := p.GetNextLine(cursor)
		if !ok || line == "" {
			break
		}
		if v, matched := matchHeaderLine(line, name); matched {
			value, found = v, true
		}
		cursor = next
	}
	return value, found
}

func matchHeaderLine(line, name string) (string, bool) {
	if len(line) <= len(name) || !strings.HasPrefix(line, name) {
		return "", false
	}
	sep := line[len(name)]
	if sep != ':' && sep != ' ' {
		return "", false
	}
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", false
	}
	return strings.Trim(line[colon+1:], " "), true
}

// DisplayName extracts the display name carried inside the DESC header
// value: the text between the literal substring ":name:" and the following
// colon. It returns false if the DESC header is absent or carries no name
// key.
func (p *Packet) DisplayName(descHeader string) (string, bool) {
	desc, ok := p.HeaderValue(descHeader)
	if !ok {
		return "", false
	}
	const key = ":name:"
	idx := strings.Index(desc, key)
	if idx < 0 {
		return "", false
	}
	rest := desc[idx+len(key):]
	end := strings.IndexByte(rest, ':')
	if end < 0 {
		return rest, rest != ""
	}
	return rest[:end], true
}

// MaxLineLength returns the length of the longest line in the packet,
// computed on first use and memoized.
func (p *Packet) MaxLineLength() int {
	if p.maxLineSet {
		return p.maxLine
	}
	max := 0
	cursor := 0
	for {
		line, next, ok := p.GetNextLine(cursor)
		if !ok {
			break
		}
		if len(line) > max {
			max = len(line)
		}
		cursor = next
	}
	p.maxLine = max
	p.maxLineSet = true
	return max
}

// String returns the raw packet text, mainly for logging.
func (p *Packet) String() string {
	return p.buf
}
