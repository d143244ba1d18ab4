package anidb

import (
	"net"
	"strings"
)

// mockServer is a minimal stand-in for the AniDB UDP API, in the same
// spirit as tests/mock_server.rs: it accepts any AUTH and replies with a
// fixed session token, acknowledges LOGOUT, and replies to FILE with a
// fixed "no such file" so tests can exercise that wire path end to end.
type mockServer struct {
	conn  *net.UDPConn
	Token string

	// FileReply, if set, overrides the default 320 reply to FILE queries.
	FileReply string
}

func newMockServer() (*mockServer, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		return nil, err
	}
	s := &mockServer{conn: conn, Token: "tok12"}
	go s.serve()
	return s, nil
}

func (s *mockServer) Addr() string {
	return s.conn.LocalAddr().String()
}

func (s *mockServer) Close() {
	s.conn.Close()
}

func (s *mockServer) serve() {
	buf := make([]byte, maxReplySize)
	for {
		n, raddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		msg := string(buf[:n])

		var reply string
		switch {
		case strings.HasPrefix(msg, "AUTH"):
			reply = "200 " + s.Token + " LOGIN ACCEPTED\n"
		case strings.HasPrefix(msg, "LOGOUT"):
			reply = "203 LOGGED OUT\n"
		case strings.HasPrefix(msg, "FILE"):
			if s.FileReply != "" {
				reply = s.FileReply
			} else {
				reply = "320 NO SUCH FILE\n"
			}
		default:
			reply = "598 UNKNOWN COMMAND\n"
		}
		s.conn.WriteToUDP([]byte(reply), raddr)
	}
}
