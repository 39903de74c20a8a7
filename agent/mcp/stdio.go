package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

var errLineTooLong = errors.New("request line too long")

// Serve runs the line-oriented request loop: announce readiness, then one
// JSON envelope per line in, one per line out. Requests are handled
// sequentially so responses come back in request order. A line over the
// size bound is discarded and answered with a parse error; it never kills
// the loop, since callers must always receive a well-formed envelope.
func Serve(ctx context.Context, r io.Reader, w io.Writer, srv *Server) error {
	ready, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "initialized",
	})
	if _, err := fmt.Fprintln(w, string(ready)); err != nil {
		return fmt.Errorf("write initialized notification: %w", err)
	}

	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readLine(reader)
		if errors.Is(err, errLineTooLong) {
			resp := marshalResponse(errorResponse(nil, CodeParseError, "parse error: request exceeds size limit"))
			if _, werr := fmt.Fprintln(w, string(resp)); werr != nil {
				return fmt.Errorf("write response: %w", werr)
			}
			continue
		}

		if len(line) > 0 {
			resp := srv.HandleRequest(ctx, line)
			if _, werr := fmt.Fprintln(w, string(resp)); werr != nil {
				return fmt.Errorf("write response: %w", werr)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// readLine returns the next newline-delimited line with the terminator
// stripped. A line past maxLineBytes is drained to its end and reported as
// errLineTooLong. io.EOF may accompany a final unterminated line.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)
		switch {
		case err == nil:
			return bytes.TrimRight(line, "\r\n"), nil
		case errors.Is(err, io.EOF):
			return bytes.TrimRight(line, "\r\n"), io.EOF
		case errors.Is(err, bufio.ErrBufferFull):
			if len(line) > maxLineBytes {
				return nil, discardLine(r)
			}
		default:
			return nil, err
		}
	}
}

func discardLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return errLineTooLong
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return err
		}
	}
}
