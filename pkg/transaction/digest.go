package transaction

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Challenge is a parsed WWW-Authenticate/Proxy-Authenticate Digest
// challenge (RFC 2617 §3.2.1).
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Algorithm string // defaults to "MD5" if absent
	Qop       string // "auth", "", or a comma list; only "auth" is honored
}

// ParseChallenge decodes a `Digest realm="...",nonce="...",...` header
// value. Only the quoted-string / token forms RFC 2617 defines are
// recognized; unrecognized directives are ignored.
func ParseChallenge(header string) (*Challenge, error) {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "Digest")
	header = strings.TrimSpace(header)

	c := &Challenge{Algorithm: "MD5"}
	for _, part := range splitDigestParams(header) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(part[:eq]))
		val := strings.Trim(strings.TrimSpace(part[eq+1:]), `"`)
		switch key {
		case "realm":
			c.Realm = val
		case "nonce":
			c.Nonce = val
		case "opaque":
			c.Opaque = val
		case "algorithm":
			c.Algorithm = val
		case "qop":
			c.Qop = val
		}
	}

	if c.Realm == "" || c.Nonce == "" {
		return nil, ErrMissingChallengeField
	}
	if !strings.EqualFold(c.Algorithm, "MD5") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, c.Algorithm)
	}
	return c, nil
}

// splitDigestParams splits on commas that are not inside a quoted string.
func splitDigestParams(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch r {
		case '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case ',':
			if inQuotes {
				cur.WriteRune(r)
			} else {
				parts = append(parts, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// Credentials is the computed Authorization/Proxy-Authorization header
// value's field set for one digest response.
type Credentials struct {
	Username string
	Realm    string
	Nonce    string
	URI      string
	Response string
	Qop      string // "" when the challenge offered no qop
	NC       string // "%08x" formatted, only set when Qop != ""
	CNonce   string // only set when Qop != ""
	Opaque   string
}

// ComputeResponse implements RFC 2617 §3.2.2.1's response computation:
//
//	HA1 = MD5(username:realm:password)
//	HA2 = MD5(method:digestURI)
//	response = MD5(HA1:nonce:nc:cnonce:qop:HA2)   when qop=auth
//	response = MD5(HA1:nonce:HA2)                 otherwise
//
// nc is the request counter for this nonce (starts at 1). cnonce is the
// client nonce to use when the challenge offers qop=auth; pass "" to have
// one generated at random. Taking cnonce as a parameter rather than always
// drawing from crypto/rand keeps the computation reproducible against a
// fixed test vector.
func ComputeResponse(challenge *Challenge, method, digestURI, username, password, cnonce string, nc int) (Credentials, error) {
	ha1 := md5Hex(username + ":" + challenge.Realm + ":" + password)
	ha2 := md5Hex(method + ":" + digestURI)

	creds := Credentials{
		Username: username,
		Realm:    challenge.Realm,
		Nonce:    challenge.Nonce,
		URI:      digestURI,
		Opaque:   challenge.Opaque,
	}

	useQop := strings.Contains(challenge.Qop, "auth")
	if !useQop {
		creds.Response = md5Hex(ha1 + ":" + challenge.Nonce + ":" + ha2)
		return creds, nil
	}

	if cnonce == "" {
		generated, err := randomHex(8)
		if err != nil {
			return Credentials{}, err
		}
		cnonce = generated
	}
	ncStr := fmt.Sprintf("%08x", nc)
	creds.Qop = "auth"
	creds.NC = ncStr
	creds.CNonce = cnonce
	creds.Response = md5Hex(strings.Join([]string{ha1, challenge.Nonce, ncStr, cnonce, "auth", ha2}, ":"))
	return creds, nil
}

// Header renders creds as an Authorization/Proxy-Authorization header value
// (without the header name itself).
func (c Credentials) Header() string {
	var b strings.Builder
	fmt.Fprintf(&b, `Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		c.Username, c.Realm, c.Nonce, c.URI, c.Response)
	if c.Opaque != "" {
		fmt.Fprintf(&b, `, opaque="%s"`, c.Opaque)
	}
	if c.Qop != "" {
		fmt.Fprintf(&b, `, qop=%s, nc=%s, cnonce="%s"`, c.Qop, c.NC, c.CNonce)
	}
	return b.String()
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
