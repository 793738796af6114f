package sipmsg

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvite = "INVITE sip:bot@127.0.0.1:5060 SIP/2.0\r\n" +
	"Via: SIP/2.0/UDP 127.0.0.2:5060;branch=z9hG4bK776asdhds\r\n" +
	"From: \"Caller\" <sip:caller@127.0.0.2>;tag=1928301774\r\n" +
	"To: <sip:bot@127.0.0.1>\r\n" +
	"Call-ID: a84b4c76e66710@127.0.0.2\r\n" +
	"CSeq: 314159 INVITE\r\n" +
	"Content-Type: application/sdp\r\n" +
	"Content-Length: 4\r\n" +
	"\r\n" +
	"abcd"

func TestParseRequest(t *testing.T) {
	msg, err := Parse([]byte(sampleInvite))
	require.NoError(t, err)
	req, ok := msg.(*Request)
	require.True(t, ok)
	assert.Equal(t, "INVITE", req.Method)
	assert.Equal(t, "bot", req.URI.User)
	assert.Equal(t, "127.0.0.1", req.URI.Host)
	assert.Equal(t, 5060, req.URI.Port)
	assert.Equal(t, "a84b4c76e66710@127.0.0.2", req.Headers.Get("Call-ID"))
	assert.Equal(t, []byte("abcd"), req.Body)

	cseq, err := ParseCSeq(req.Headers.Get("CSeq"))
	require.NoError(t, err)
	assert.Equal(t, uint32(314159), cseq.Sequence)
	assert.Equal(t, "INVITE", cseq.Method)

	from, err := ParseNameAddr(req.Headers.Get("From"))
	require.NoError(t, err)
	assert.Equal(t, "Caller", from.DisplayName)
	assert.Equal(t, "1928301774", from.Tag())

	assert.Equal(t, "z9hG4bK776asdhds", ExtractBranch(req.Headers.Get("Via")))
}

func TestBuildParseRoundTripModuloOrderAndContentLength(t *testing.T) {
	req := NewRequest("BYE", mustURI(t, "sip:peer@127.0.0.1:5060"))
	req.Headers.Add("Via", "SIP/2.0/UDP 10.0.0.1:5060;branch=z9hG4bKxyz")
	req.Headers.Add("From", `<sip:bot@127.0.0.1>;tag=abc`)
	req.Headers.Add("To", `<sip:peer@127.0.0.1>;tag=def`)
	req.Headers.Add("Call-ID", "call-1")
	req.Headers.Add("CSeq", "2 BYE")

	buf := req.Build()
	msg, err := Parse(buf)
	require.NoError(t, err)
	got := msg.(*Request)
	assert.Equal(t, "BYE", got.Method)
	assert.Equal(t, "call-1", got.Headers.Get("Call-ID"))
	assert.Equal(t, "0", got.Headers.Get("Content-Length"))
}

func TestResponseBuildParseRoundTrip(t *testing.T) {
	resp := NewResponse(200, "OK")
	resp.Headers.Add("Via", "SIP/2.0/UDP 127.0.0.2:5060;branch=z9hG4bK1")
	resp.Headers.Add("From", "<sip:a@b>;tag=1")
	resp.Headers.Add("To", "<sip:c@d>;tag=2")
	resp.Headers.Add("Call-ID", "cid")
	resp.Headers.Add("CSeq", "1 INVITE")
	resp.Body = []byte("v=0\r\n")

	buf := resp.Build()
	msg, err := Parse(buf)
	require.NoError(t, err)
	got := msg.(*Response)
	assert.Equal(t, 200, got.Status)
	assert.Equal(t, "OK", got.Reason)
	assert.Equal(t, []byte("v=0\r\n"), got.Body)
	assert.Equal(t, strconv.Itoa(len(got.Body)), got.Headers.Get("Content-Length"))
}

func TestNewResponseFromRequestCopiesDialogHeaders(t *testing.T) {
	msg, err := Parse([]byte(sampleInvite))
	require.NoError(t, err)
	req := msg.(*Request)

	resp := NewResponseFromRequest(req, 180, "", true, "rustbot-tag")
	assert.Equal(t, "Ringing", resp.Reason)
	assert.Equal(t, req.Headers.Get("Call-ID"), resp.Headers.Get("Call-ID"))
	assert.Contains(t, resp.Headers.Get("To"), "tag=rustbot-tag")
}

func TestHeadersCaseInsensitive(t *testing.T) {
	var h Headers
	h.Add("CALL-ID", "abc")
	assert.Equal(t, "abc", h.Get("call-id"))
	assert.Equal(t, "abc", h.Get("i"))
	assert.True(t, h.Has("Call-Id"))
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func mustURI(t *testing.T, raw string) *URI {
	t.Helper()
	u, err := ParseURI(raw)
	require.NoError(t, err)
	return u
}
