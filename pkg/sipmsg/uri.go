package sipmsg

import (
	"fmt"
	"strconv"
	"strings"
)

// URI is a decoded sip:/sips:/tel: URI: scheme:user@host[:port][;params].
type URI struct {
	Scheme string
	User   string
	Host   string
	Port   int // 0 if unspecified
	Params map[string]string
}

// String renders the URI back to wire form.
func (u *URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteByte(':')
	if u.User != "" {
		b.WriteString(u.User)
		if u.Host != "" {
			b.WriteByte('@')
		}
	}
	b.WriteString(u.Host)
	if u.Port != 0 {
		b.WriteString(":")
		b.WriteString(strconv.Itoa(u.Port))
	}
	for k, v := range u.Params {
		b.WriteByte(';')
		b.WriteString(k)
		if v != "" {
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}

// ParseURI parses a sip:, sips:, or tel: URI.
func ParseURI(raw string) (*URI, error) {
	raw = strings.TrimSpace(raw)
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return nil, fmt.Errorf("%w: no scheme in %q", ErrInvalidURI, raw)
	}
	scheme := strings.ToLower(raw[:colon])
	rest := raw[colon+1:]

	switch scheme {
	case "tel":
		userAndParams := rest
		user, params := splitURIParams(userAndParams)
		return &URI{Scheme: scheme, User: user, Params: params}, nil
	case "sip", "sips":
		return parseSIPURI(scheme, rest)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, scheme)
	}
}

func parseSIPURI(scheme, rest string) (*URI, error) {
	hostpart, params := splitURIParams(rest)

	var user, hostport string
	if at := strings.LastIndexByte(hostpart, '@'); at >= 0 {
		user = hostpart[:at]
		hostport = hostpart[at+1:]
	} else {
		hostport = hostpart
	}

	host := hostport
	port := 0
	if c := strings.LastIndexByte(hostport, ':'); c >= 0 {
		host = hostport[:c]
		p, err := strconv.Atoi(hostport[c+1:])
		if err != nil {
			return nil, fmt.Errorf("%w: bad port in %q", ErrInvalidURI, hostport)
		}
		port = p
	}
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidURI)
	}

	return &URI{Scheme: scheme, User: user, Host: host, Port: port, Params: params}, nil
}

// splitURIParams splits "a;b=c;d=e" into ("a", {b:c, d:e}).
func splitURIParams(s string) (string, map[string]string) {
	params := map[string]string{}
	parts := strings.Split(s, ";")
	head := parts[0]
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			params[strings.ToLower(p[:eq])] = p[eq+1:]
		} else {
			params[strings.ToLower(p)] = ""
		}
	}
	return head, params
}

// ParseNameAddr decodes a From/To/Contact-style value:
// `"display"<sip:uri>;params` or a bare `sip:uri;params`.
func ParseNameAddr(value string) (NameAddr, error) {
	value = strings.TrimSpace(value)

	var display string
	uriPart := value

	if strings.HasPrefix(value, `"`) {
		end := strings.IndexByte(value[1:], '"')
		if end < 0 {
			return NameAddr{}, fmt.Errorf("%w: unterminated display-name in %q", ErrInvalidMessage, value)
		}
		display = value[1 : end+1]
		uriPart = strings.TrimSpace(value[end+2:])
	}

	var uriStr, paramStr string
	if strings.HasPrefix(uriPart, "<") {
		close := strings.IndexByte(uriPart, '>')
		if close < 0 {
			return NameAddr{}, fmt.Errorf("%w: unterminated name-addr in %q", ErrInvalidMessage, value)
		}
		uriStr = uriPart[1:close]
		paramStr = strings.TrimPrefix(uriPart[close+1:], ";")
		if display == "" {
			// bare "<uri>" with no preceding quoted display-name is still
			// valid name-addr form.
		}
	} else {
		// bare URI, optionally followed by ;params belonging to the header
		// itself (e.g. the From header's own tag).
		if semi := strings.IndexByte(uriPart, ';'); semi >= 0 {
			uriStr = uriPart[:semi]
			paramStr = uriPart[semi+1:]
		} else {
			uriStr = uriPart
		}
	}

	uri, err := ParseURI(strings.TrimSpace(uriStr))
	if err != nil {
		return NameAddr{}, err
	}

	params := map[string]string{}
	if paramStr != "" {
		for _, p := range strings.Split(paramStr, ";") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if eq := strings.IndexByte(p, '='); eq >= 0 {
				params[strings.ToLower(p[:eq])] = p[eq+1:]
			} else {
				params[strings.ToLower(p)] = ""
			}
		}
	}

	return NameAddr{DisplayName: display, URI: uri, Params: params}, nil
}

// BuildNameAddr renders a NameAddr back to wire form.
func BuildNameAddr(n NameAddr) string {
	var b strings.Builder
	if n.DisplayName != "" {
		b.WriteByte('"')
		b.WriteString(n.DisplayName)
		b.WriteString(`" `)
	}
	b.WriteByte('<')
	b.WriteString(n.URI.String())
	b.WriteByte('>')
	for k, v := range n.Params {
		b.WriteByte(';')
		b.WriteString(k)
		if v != "" {
			b.WriteByte('=')
			b.WriteString(v)
		}
	}
	return b.String()
}
