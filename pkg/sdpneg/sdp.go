// Package sdpneg negotiates a fixed PCMU/PCMA audio session: it parses an
// inbound SDP offer to recover the peer's media address and codec list, and
// builds the bot's own offer/answer bodies using pion/sdp/v3.
package sdpneg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
)

// ErrNoAudioMedia is returned when an SDP carries no audio m= line.
var ErrNoAudioMedia = errors.New("sdpneg: no audio media description")

// ErrNoSupportedCodec is returned when an audio m= line offers only payload
// types this bot cannot speak (only 0/PCMU and 8/PCMA are supported).
var ErrNoSupportedCodec = errors.New("sdpneg: no supported codec in offer")

// ErrNoConnectionInfo is returned when neither the session level nor the
// audio media level carries connection information (c= line).
var ErrNoConnectionInfo = errors.New("sdpneg: missing connection information")

// PeerMedia is what this bot needs from a parsed offer: where to send RTP
// and which codec to answer with.
type PeerMedia struct {
	Host      string
	Port      int
	Codec     g711.Codec
	Direction string // sendrecv, sendonly, recvonly, inactive
}

// ParseOffer decodes a raw SDP body and extracts the audio media this bot
// cares about. Multiple m= lines are tolerated (the source document this was
// modeled on is equally permissive): only the first audio line is consulted,
// the rest are ignored.
func ParseOffer(body []byte) (*PeerMedia, error) {
	var desc sdp.SessionDescription
	if err := desc.Unmarshal(string(body)); err != nil {
		return nil, fmt.Errorf("sdpneg: parse offer: %w", err)
	}

	var audio *sdp.MediaDescription
	for _, m := range desc.MediaDescriptions {
		if m.MediaName.Media == "audio" {
			audio = m
			break
		}
	}
	if audio == nil {
		return nil, ErrNoAudioMedia
	}

	codec, err := selectCodec(audio.MediaName.Formats, audio.Attributes)
	if err != nil {
		return nil, err
	}

	host, err := connectionAddress(&desc, audio)
	if err != nil {
		return nil, err
	}

	return &PeerMedia{
		Host:      host,
		Port:      audio.MediaName.Port.Value,
		Codec:     codec,
		Direction: mediaDirection(audio.Attributes),
	}, nil
}

// selectCodec picks the first payload type this bot supports, preferring the
// offer's own ordering. A bare numeric format with no rtpmap is trusted at
// face value for the two static payload types this bot understands.
func selectCodec(formats []string, attrs []sdp.Attribute) (g711.Codec, error) {
	rtpmaps := make(map[string]string, len(attrs))
	for _, a := range attrs {
		if a.Key == "rtpmap" {
			parts := strings.SplitN(a.Value, " ", 2)
			if len(parts) == 2 {
				rtpmaps[parts[0]] = parts[1]
			}
		}
	}

	for _, f := range formats {
		pt, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		codec, ok := g711.CodecFromPayloadType(uint8(pt))
		if !ok {
			continue
		}
		if rtpmap, present := rtpmaps[f]; present && !strings.HasPrefix(strings.ToUpper(rtpmap), codec.Name()) {
			continue
		}
		return codec, nil
	}
	return 0, ErrNoSupportedCodec
}

func mediaDirection(attrs []sdp.Attribute) string {
	for _, a := range attrs {
		switch a.Key {
		case "sendrecv", "sendonly", "recvonly", "inactive":
			return a.Key
		}
	}
	return "sendrecv"
}

func connectionAddress(desc *sdp.SessionDescription, audio *sdp.MediaDescription) (string, error) {
	if audio.ConnectionInformation != nil && audio.ConnectionInformation.Address != nil {
		return audio.ConnectionInformation.Address.Address, nil
	}
	if desc.ConnectionInformation != nil && desc.ConnectionInformation.Address != nil {
		return desc.ConnectionInformation.Address.Address, nil
	}
	return "", ErrNoConnectionInfo
}

// BuildAnswer renders the fixed single-codec answer body for codec:
// sendrecv, one audio line. The coordinator always answers with PCMU.
func BuildAnswer(localIP string, rtpPort int, codec g711.Codec) []byte {
	desc := &sdp.SessionDescription{
		Version: 0,
		Origin: sdp.Origin{
			Username:       "rustbot",
			SessionID:      1,
			SessionVersion: 1,
			NetworkType:    "IN",
			AddressType:    "IP4",
			UnicastAddress: localIP,
		},
		SessionName: sdp.SessionName("Rust PCMU Bot"),
		ConnectionInformation: &sdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: "IP4",
			Address:     &sdp.Address{Address: localIP},
		},
		TimeDescriptions: []sdp.TimeDescription{{Timing: sdp.Timing{StartTime: 0, StopTime: 0}}},
	}

	pt := strconv.Itoa(int(codec.PayloadType()))
	media := &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:   "audio",
			Port:    sdp.RangedPort{Value: rtpPort},
			Protos:  []string{"RTP", "AVP"},
			Formats: []string{pt},
		},
		Attributes: []sdp.Attribute{
			sdp.NewAttribute("rtpmap", pt+" "+codec.Name()+"/8000"),
			sdp.NewPropertyAttribute("sendrecv"),
		},
	}
	desc.MediaDescriptions = []*sdp.MediaDescription{media}

	raw, err := desc.Marshal()
	if err != nil {
		// desc is built entirely from valid fixed fields above; Marshal
		// can only fail on a malformed SessionDescription.
		panic(fmt.Sprintf("sdpneg: marshal fixed answer: %v", err))
	}
	return raw
}

// BuildOffer renders this bot's outbound SDP offer, used for the B2BUA
// transfer leg. It is the same fixed shape as BuildAnswer: this bot never
// offers more than one codec.
func BuildOffer(localIP string, rtpPort int, codec g711.Codec) []byte {
	return BuildAnswer(localIP, rtpPort, codec)
}
