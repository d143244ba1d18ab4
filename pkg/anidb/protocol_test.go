package anidb

import (
	"errors"
	"testing"
)

func TestParseReplyOK(t *testing.T) {
	reply, err := parseReply([]byte("500 LOGIN FAILED"))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if reply.Code != 500 || reply.Data != "LOGIN FAILED" {
		t.Errorf("parseReply = %+v, want {500 LOGIN FAILED}", reply)
	}
}

func TestParseReplyExactLength(t *testing.T) {
	reply, err := parseReply([]byte("777 O"))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}
	if reply.Code != 777 || reply.Data != "O" {
		t.Errorf("parseReply = %+v, want {777 O}", reply)
	}
}

func TestParseReplyTooShort(t *testing.T) {
	if _, err := parseReply([]byte("3D")); !errors.Is(err, ErrShortReply) {
		t.Errorf("parseReply(\"3D\") = %v, want ErrShortReply", err)
	}
}

func TestParseReplyNonNumericCode(t *testing.T) {
	if _, err := parseReply([]byte("a3i5LOGIN FAILED")); err == nil {
		t.Error("parseReply with non-numeric code should fail")
	}
}

func TestParseReplyPartiallyNumericCode(t *testing.T) {
	if _, err := parseReply([]byte("34i5LOGIN FAILED")); err == nil {
		t.Error("parseReply with partially-numeric code should fail")
	}
}

func TestParseReplyRoundTrip(t *testing.T) {
	cases := []struct {
		code int32
		data string
	}{
		{200, "tok12 LOGIN ACCEPTED\n"},
		{320, "NO SUCH FILE"},
		{777, "O"},
	}
	for _, c := range cases {
		raw := formatReply(c.code, c.data)
		got, err := parseReply([]byte(raw))
		if err != nil {
			t.Fatalf("parseReply(%q): %v", raw, err)
		}
		if got.Code != c.code || got.Data != c.data {
			t.Errorf("round trip %+v -> %q -> %+v", c, raw, got)
		}
	}
}

func TestFormatLogin(t *testing.T) {
	got := formatLogin("leeloo_dallas", "multipass", "anisortgo")
	want := "AUTH user=leeloo_dallas&pass=multipass&protover=3&client=anisortgo&clientver=1"
	if got != want {
		t.Errorf("formatLogin = %q, want %q", got, want)
	}
}

func TestFormatLogout(t *testing.T) {
	got := formatLogout("abcd1234")
	want := "LOGOUT s=abcd1234"
	if got != want {
		t.Errorf("formatLogout = %q, want %q", got, want)
	}
}

func TestValidateAuthReplyAccepted(t *testing.T) {
	token, err := validateAuthReply(ServerReply{Code: 200, Data: "tok LOGIN ACCEPTED\n"})
	if err != nil {
		t.Fatalf("validateAuthReply: %v", err)
	}
	if token != "tok" {
		t.Errorf("token = %q, want %q", token, "tok")
	}
}

func TestValidateAuthReplyRejected(t *testing.T) {
	_, err := validateAuthReply(ServerReply{Code: 200, Data: "tok LOGIN REJECTED\n"})
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("validateAuthReply = %v, want *ProtocolError", err)
	}
}

func TestValidateAuthReplyBadCode(t *testing.T) {
	_, err := validateAuthReply(ServerReply{Code: 500, Data: "LOGIN FAILED"})
	var ece *ErrorCodeError
	if !errors.As(err, &ece) {
		t.Fatalf("validateAuthReply = %v, want *ErrorCodeError", err)
	}
}

func TestDecodeFileReplySuccess(t *testing.T) {
	data := "220 FILE\n1879191|12235|183230|10435|video.mkv|25|25|2017|TV Series|Little Witch Academia|LWA|LWA other|lwatv|01|A New Beginning|Arata na Hajimari|AnimeSenshi Subs|Asenshi"
	reply, err := parseReply([]byte(data))
	if err != nil {
		t.Fatalf("parseReply: %v", err)
	}

	f, err := decodeFileReply(reply)
	if err != nil {
		t.Fatalf("decodeFileReply: %v", err)
	}
	if f.FID != 1879191 || f.AID != 12235 || f.EID != 183230 || f.GID != 10435 {
		t.Errorf("ids = %+v", f)
	}
	if f.SeriesRomaji != "Little Witch Academia" {
		t.Errorf("SeriesRomaji = %q", f.SeriesRomaji)
	}
	if f.EpNumber != "01" || f.EpName != "A New Beginning" {
		t.Errorf("episode fields = %q / %q", f.EpNumber, f.EpName)
	}
}

func TestDecodeFileReplyNoSuchFile(t *testing.T) {
	_, err := decodeFileReply(ServerReply{Code: 320, Data: "NO SUCH FILE"})
	if !errors.Is(err, ErrNoSuchFile) {
		t.Errorf("decodeFileReply(320) = %v, want ErrNoSuchFile", err)
	}
}

func TestDecodeFileReplyAmbiguous(t *testing.T) {
	_, err := decodeFileReply(ServerReply{Code: 322, Data: "123 456 789"})
	var ame *AmbiguousMatchError
	if !errors.As(err, &ame) {
		t.Fatalf("decodeFileReply(322) = %v, want *AmbiguousMatchError", err)
	}
	if len(ame.Candidates) != 3 {
		t.Errorf("candidates = %v, want 3 entries", ame.Candidates)
	}
}

func TestDecodeFileReplyOtherCode(t *testing.T) {
	_, err := decodeFileReply(ServerReply{Code: 501, Data: "LOGIN FIRST"})
	var ece *ErrorCodeError
	if !errors.As(err, &ece) || ece.Code != 501 {
		t.Errorf("decodeFileReply(501) = %v, want *ErrorCodeError{501, ...}", err)
	}
}
