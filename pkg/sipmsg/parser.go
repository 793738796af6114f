package sipmsg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Parse decodes a SIP message (request or response) from its wire bytes.
// The permissive behavior spec.md documents is kept: unknown headers are
// preserved verbatim, and a missing Content-Length is tolerated (the body
// is simply everything after the blank line).
func Parse(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrInvalidMessage
	}

	sep := []byte("\r\n\r\n")
	headerEnd := bytes.Index(data, sep)
	sepLen := 4
	if headerEnd < 0 {
		sep = []byte("\n\n")
		headerEnd = bytes.Index(data, sep)
		sepLen = 2
		if headerEnd < 0 {
			return nil, ErrInvalidMessage
		}
	}

	headerData := data[:headerEnd]
	body := data[headerEnd+sepLen:]

	lines := splitLines(headerData)
	if len(lines) == 0 {
		return nil, ErrInvalidMessage
	}

	startLine := strings.TrimSpace(lines[0])
	headers, err := parseHeaders(lines[1:])
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(startLine, "SIP/") {
		return parseResponseLine(startLine, headers, body)
	}
	return parseRequestLine(startLine, headers, body)
}

// splitLines splits on CRLF, falling back to bare LF for tolerant peers,
// and un-folds RFC 2822 continuation lines (leading whitespace).
func splitLines(headerData []byte) []string {
	raw := bytes.Split(headerData, []byte("\r\n"))
	if len(raw) == 1 {
		raw = bytes.Split(headerData, []byte("\n"))
	}

	var lines []string
	for _, r := range raw {
		line := string(r)
		if len(lines) > 0 && len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			lines[len(lines)-1] += " " + strings.TrimSpace(line)
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseHeaders(lines []string) (Headers, error) {
	var h Headers
	for _, line := range lines {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue // tolerate malformed trailing lines rather than fail the whole message
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		h.Add(name, value)
	}
	return h, nil
}

func parseRequestLine(line string, headers Headers, body []byte) (*Request, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartLine, line)
	}
	uri, err := ParseURI(parts[1])
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(parts[2], "SIP/2.0") {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidMessage, parts[2])
	}
	return &Request{
		Method:  strings.ToUpper(parts[0]),
		URI:     uri,
		Version: parts[2],
		Headers: headers,
		Body:    body,
	}, nil
}

func parseResponseLine(line string, headers Headers, body []byte) (*Response, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStartLine, line)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil || status < 100 || status > 699 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatusCode, parts[1])
	}
	reason := ""
	if len(parts) > 2 {
		reason = parts[2]
	} else {
		reason = DefaultReasonPhrase(status)
	}
	return &Response{
		Version: parts[0],
		Status:  status,
		Reason:  reason,
		Headers: headers,
		Body:    body,
	}, nil
}
