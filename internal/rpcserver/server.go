// Package rpcserver implements the kgtree query server: a minimal
// newline-delimited JSON request/response protocol over TCP or any
// io.ReadWriter. Each request carries a document and an Opath expression;
// the response is the resulting NodeSet in its interop JSON form. The
// protocol is deliberately small -- a tree query has no document/position
// vocabulary that would justify a heavier RPC framing.
package rpcserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/kodegenix/kgtree/pkg/format"
	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// Sentinel errors.
var (
	ErrMissingExpr = errors.New("request is missing the expr field")
	ErrMissingRoot = errors.New("request is missing the root field")
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 16 << 20

// Request is one query: a JSON document and an Opath expression to apply
// to it.
type Request struct {
	Root json.RawMessage `json:"root"`
	Expr string          `json:"expr"`
}

// Response carries either the NodeSet result or an error message.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Options tunes per-connection behavior.
type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server evaluates Opath queries over the line protocol.
type Server struct {
	logger *slog.Logger
	reg    *format.Registry
	opts   Options
}

// New creates a Server logging through logger and parsing documents with
// the default format registry.
func New(logger *slog.Logger, opts Options) *Server {
	return &Server{logger: logger, reg: format.Default(), opts: opts}
}

// Serve accepts connections until ctx is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			wg.Wait()

			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)

		go func() {
			defer wg.Done()
			defer conn.Close()

			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	s.logger.Info("client connected", "remote", conn.RemoteAddr().String())

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		if s.opts.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.Handle([]byte(line))

		if s.opts.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
		}

		if err := writeResponse(conn, resp); err != nil {
			s.logger.Warn("writing response", "remote", conn.RemoteAddr().String(), "err", err)

			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("reading request", "remote", conn.RemoteAddr().String(), "err", err)
	}
}

// ServeStdio runs the same protocol over an arbitrary reader/writer pair,
// used for stdio mode and tests.
func (s *Server) ServeStdio(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := writeResponse(w, s.Handle([]byte(line))); err != nil {
			return err
		}
	}

	return scanner.Err()
}

func writeResponse(w io.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	data = append(data, '\n')

	_, err = w.Write(data)

	return err
}

// Handle evaluates one raw request line into a Response.
func (s *Server) Handle(line []byte) Response {
	var req Request

	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(fmt.Errorf("decoding request: %w", err))
	}

	result, err := s.eval(req)
	if err != nil {
		return errorResponse(err)
	}

	return Response{Result: result}
}

func (s *Server) eval(req Request) (json.RawMessage, error) {
	if strings.TrimSpace(req.Expr) == "" {
		return nil, ErrMissingExpr
	}

	if len(req.Root) == 0 {
		return nil, ErrMissingRoot
	}

	adapter, err := s.reg.Get(tree.FormatJSON)
	if err != nil {
		return nil, err
	}

	root, err := adapter.Parse(req.Root)
	if err != nil {
		return nil, fmt.Errorf("parsing root document: %w", err)
	}

	expr, err := opath.Parse(req.Expr)
	if err != nil {
		return nil, fmt.Errorf("parsing expression: %w", err)
	}

	res, err := expr.Apply(root, root)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression: %w", err)
	}

	data, err := opath.NodeSetToJSON(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	s.logger.Debug("query evaluated", "expr", req.Expr, "results", res.Len())

	return data, nil
}

func errorResponse(err error) Response { return Response{Error: err.Error()} }
