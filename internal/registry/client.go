package registry

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gossip_chat/internal/dataType"
)

// Session carries what the registry dialog collects and what it needs to
// answer with. One Session spans both connections: the bootstrap session that
// fills Peers, and the closing session that uploads Report.
type Session struct {
	TeamName string
	CodePath string

	// LocalAddr is remembered on the first connection so "get location"
	// answers the same endpoint even after the socket is replaced.
	LocalAddr string

	Peers  []dataType.Endpoint
	Report string

	seen map[dataType.Endpoint]bool
}

// NewSession prepares a session context for a node with the given team name.
// codePath is the directory enumerated for "get code".
func NewSession(teamName, codePath string) *Session {
	if codePath == "" {
		codePath = "."
	}
	return &Session{
		TeamName: teamName,
		CodePath: codePath,
		seen:     make(map[dataType.Endpoint]bool),
	}
}

// Client speaks the registry's line-oriented TCP dialog. The registry drives:
// it sends one command per line and the client answers until told to close.
type Client struct {
	registryAddr string
	localPort    uint16
	logger       *zap.Logger
}

func NewClient(registryAddr string, localPort uint16, logger *zap.Logger) *Client {
	return &Client{
		registryAddr: registryAddr,
		localPort:    localPort,
		logger:       logger.With(zap.String("registry", registryAddr)),
	}
}

// Run connects to the registry and serves its commands until the registry
// closes the dialog. Protocol violations abort the session with an error.
func (c *Client) Run(session *Session) error {
	// Bind the gossip port only on the first connection; the remembered
	// LocalAddr keeps "get location" stable, and the closing session would
	// trip over the first connection's TIME_WAIT if it rebound the port.
	dialer := net.Dialer{}
	if session.LocalAddr == "" {
		dialer.LocalAddr = &net.TCPAddr{Port: int(c.localPort)}
	}
	conn, err := dialer.Dial("tcp4", c.registryAddr)
	if err != nil {
		return fmt.Errorf("connect registry %s: %w", c.registryAddr, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if session.LocalAddr == "" {
		session.LocalAddr = conn.LocalAddr().String()
	}
	c.logger.Info("registry session opened", zap.String("local", session.LocalAddr))

	reader := bufio.NewReader(conn)
	for {
		command, err := readLine(reader)
		if err != nil {
			c.logger.Info("registry session ended", zap.Error(err))
			return nil
		}

		c.logger.Debug("registry command", zap.String("command", command))
		done, err := c.dispatch(conn, reader, session, command)
		if err != nil {
			return fmt.Errorf("registry command %q: %w", command, err)
		}
		if done {
			c.logger.Info("registry session closed")
			return nil
		}
	}
}

// dispatch matches the command by substring, the way the registry's dialect
// is defined, and serves it. done reports that the dialog is over.
func (c *Client) dispatch(conn net.Conn, reader *bufio.Reader, session *Session, command string) (done bool, err error) {
	switch {
	case command == "":
		return true, nil
	case strings.Contains(command, "get team name"):
		return false, writeLine(conn, session.TeamName)
	case strings.Contains(command, "get location"):
		return false, writeLine(conn, session.LocalAddr)
	case strings.Contains(command, "get code"):
		return false, c.sendCode(conn, session)
	case strings.Contains(command, "get report"):
		return false, writeLine(conn, session.Report)
	case strings.Contains(command, "receive peers"):
		return c.receivePeers(reader, session)
	case strings.Contains(command, "close"):
		return true, nil
	default:
		return false, fmt.Errorf("unknown command")
	}
}

// sendCode answers "get code": the implementation language, every source
// file's contents, then the terminator line.
func (c *Client) sendCode(conn net.Conn, session *Session) error {
	if err := writeLine(conn, "go"); err != nil {
		return err
	}
	files, err := SourceFiles(session.CodePath)
	if err != nil {
		return fmt.Errorf("enumerate source files: %w", err)
	}
	for _, file := range files {
		contents, err := ReadSource(file)
		if err != nil {
			c.logger.Warn("skipping unreadable source file", zap.String("file", file), zap.Error(err))
			continue
		}
		if err := writeLine(conn, contents); err != nil {
			return err
		}
	}
	return writeLine(conn, "...")
}

// receivePeers reads the peer count line and that many "host:port" lines into
// the session's peer set. The sentinel "null" and unparseable entries are
// skipped. A trailing buffered "close" ends the dialog immediately.
func (c *Client) receivePeers(reader *bufio.Reader, session *Session) (done bool, err error) {
	countLine, err := readLine(reader)
	if err != nil {
		return false, fmt.Errorf("read peer count: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return false, fmt.Errorf("bad peer count %q: %w", countLine, err)
	}

	for i := 0; i < count; i++ {
		line, err := readLine(reader)
		if err != nil {
			return false, fmt.Errorf("read peer %d: %w", i, err)
		}
		peer, err := dataType.ParseEndpoint(line)
		if err != nil {
			c.logger.Warn("skipping peer entry", zap.String("entry", line), zap.Error(err))
			continue
		}
		if !session.seen[peer] {
			session.seen[peer] = true
			session.Peers = append(session.Peers, peer)
		}
	}
	c.logger.Info("received peers", zap.Int("count", len(session.Peers)))

	// The registry may batch "close" into the same payload.
	if reader.Buffered() > 0 {
		trailing, _ := reader.Peek(reader.Buffered())
		if strings.HasSuffix(string(trailing), "close\n") {
			return true, nil
		}
	}
	return false, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func writeLine(conn net.Conn, payload string) error {
	if _, err := conn.Write([]byte(payload + "\n")); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
