package anidb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Baughn/anidb-rs/pkg/ed2k"
)

// maxReplySize is the maximum size of a single UDP reply datagram; bytes
// beyond this are silently truncated by the read, and the protocol defines
// no continuation mechanism.
const maxReplySize = 2048

// ServerReply is a parsed (code, payload) pair, as returned by the server
// for every request.
type ServerReply struct {
	Code int32
	Data string
}

// parseReply parses a raw UDP datagram into a ServerReply. The first three
// bytes must be ASCII decimal digits forming the code; byte 4 is an
// (unvalidated) separator; the rest is the payload, decoded as lossy
// UTF-8 and kept verbatim (including any trailing newline).
func parseReply(b []byte) (ServerReply, error) {
	if len(b) < 5 {
		return ServerReply{}, ErrShortReply
	}
	if b[0] == '+' || b[0] == '-' {
		// ParseInt would accept a sign; the code must be three digits.
		return ServerReply{}, fmt.Errorf("anidb: parse reply code: %w",
			&strconv.NumError{Func: "ParseInt", Num: string(b[0:3]), Err: strconv.ErrSyntax})
	}
	code, err := strconv.ParseInt(string(b[0:3]), 10, 32)
	if err != nil {
		return ServerReply{}, fmt.Errorf("anidb: parse reply code: %w", err)
	}
	data := strings.ToValidUTF8(string(b[4:]), "�")
	return ServerReply{Code: int32(code), Data: data}, nil
}

// formatReply is the inverse of parseReply, used by tests.
func formatReply(code int32, data string) string {
	return fmt.Sprintf("%03d %s", code, data)
}

// formatLogin formats an AUTH command for username/password, identifying
// this client as clientName.
func formatLogin(username, password, clientName string) string {
	return fmt.Sprintf("AUTH user=%s&pass=%s&protover=3&client=%s&clientver=1", username, password, clientName)
}

// formatLogout formats a LOGOUT command for the given session token.
func formatLogout(token string) string {
	return "LOGOUT s=" + token
}

// formatFileQuery formats a FILE lookup-by-hash command.
func formatFileQuery(d ed2k.Digest) string {
	return fmt.Sprintf("FILE size=%d&ed2k=%s&fmask=7000000100&amask=F0B8E0C0", d.Size, d.Hex)
}

// validateAuthReply checks an AUTH reply for the exact shape spec.md
// requires and extracts the session token.
func validateAuthReply(reply ServerReply) (string, error) {
	if reply.Code != 200 {
		return "", &ErrorCodeError{Code: reply.Code, Data: reply.Data}
	}

	parts := strings.Split(reply.Data, " ")
	if len(parts) != 3 {
		return "", &ProtocolError{Msg: fmt.Sprintf("AUTH reply %q: expected 3 space-separated parts, got %d", reply.Data, len(parts))}
	}
	if parts[1] != "LOGIN" || parts[2] != "ACCEPTED\n" {
		return "", &ProtocolError{Msg: fmt.Sprintf("AUTH reply %q: expected \"<token> LOGIN ACCEPTED\\n\"", reply.Data)}
	}
	return parts[0], nil
}

// FileRecord is the decoded result of a successful FILE query, with
// fields in the exact order the server returns them.
type FileRecord struct {
	FID, AID, EID, GID  uint32
	Filename            string
	TotalEps, HighestEp uint32
	Year                string
	Type                string
	SeriesRomaji        string
	SeriesEnglish       string
	SeriesOther         string
	SeriesShort         string
	EpNumber            string
	EpName              string
	EpRomaji            string
	GroupName           string
	GroupShort          string
}

// decodeFileReply turns a FILE ServerReply into a FileRecord, or a typed
// error for the recognized non-success codes.
func decodeFileReply(reply ServerReply) (FileRecord, error) {
	switch reply.Code {
	case 220:
		return parseFileRecord(reply.Data)
	case 320:
		return FileRecord{}, ErrNoSuchFile
	case 322:
		return FileRecord{}, &AmbiguousMatchError{
			Candidates: parseAmbiguousCandidates(reply.Data),
			Raw:        reply.Data,
		}
	default:
		return FileRecord{}, &ErrorCodeError{Code: reply.Code, Data: reply.Data}
	}
}

func parseFileRecord(data string) (FileRecord, error) {
	lines := strings.SplitN(data, "\n", 2)
	if len(lines) < 2 {
		return FileRecord{}, &ProtocolError{Msg: "FILE reply missing data line"}
	}
	fields := strings.Split(lines[1], "|")
	if len(fields) != 18 {
		return FileRecord{}, &ProtocolError{Msg: fmt.Sprintf("FILE reply: expected 18 fields, got %d", len(fields))}
	}

	var r FileRecord
	var err error
	if r.FID, err = parseUint32("fid", fields[0]); err != nil {
		return FileRecord{}, err
	}
	if r.AID, err = parseUint32("aid", fields[1]); err != nil {
		return FileRecord{}, err
	}
	if r.EID, err = parseUint32("eid", fields[2]); err != nil {
		return FileRecord{}, err
	}
	if r.GID, err = parseUint32("gid", fields[3]); err != nil {
		return FileRecord{}, err
	}
	r.Filename = fields[4]
	if r.TotalEps, err = parseUint32("total_eps", fields[5]); err != nil {
		return FileRecord{}, err
	}
	if r.HighestEp, err = parseUint32("highest_ep", fields[6]); err != nil {
		return FileRecord{}, err
	}
	r.Year = fields[7]
	r.Type = fields[8]
	r.SeriesRomaji = fields[9]
	r.SeriesEnglish = fields[10]
	r.SeriesOther = fields[11]
	r.SeriesShort = fields[12]
	r.EpNumber = fields[13]
	r.EpName = fields[14]
	r.EpRomaji = fields[15]
	r.GroupName = fields[16]
	r.GroupShort = fields[17]
	return r, nil
}

func parseUint32(field, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, &ProtocolError{Msg: fmt.Sprintf("FILE reply: parse %s %q", field, s), Err: err}
	}
	return uint32(v), nil
}

// parseAmbiguousCandidates does a best-effort extraction of numeric ids
// out of a 322 reply payload: the exact wire shape of a real 322 reply
// isn't documented by the source, so this splits on whitespace and keeps
// whatever tokens parse as a uint32.
func parseAmbiguousCandidates(data string) []uint32 {
	var out []uint32
	for _, f := range strings.Fields(data) {
		f = strings.Trim(f, "|,\n")
		if v, err := strconv.ParseUint(f, 10, 32); err == nil {
			out = append(out, uint32(v))
		}
	}
	return out
}
