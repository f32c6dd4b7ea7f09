// Package input collects the LaTeX source from a byte stream.
//
// The stream is read in fixed-size chunks and decoded as UTF-8 on the fly, so
// input of any length is accumulated without assuming that one read returns
// everything. A leading byte order mark is dropped and invalid byte sequences
// are replaced with U+FFFD.
package input

import (
	"context"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/matzehuels/tex2svg/pkg/errors"
)

// ChunkSize is the size of each read from the underlying stream.
const ChunkSize = 4096

// Collect drains r and returns its content as text.
//
// Reads run on a separate goroutine so that a cancelled context returns
// ctx.Err() at once, even while a read is blocked on a terminal or pipe that
// never delivers data. The abandoned read ends when r does. Read failures are
// reported as INPUT_READ errors.
func Collect(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := drain(ctx, r)
		ch <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.text, res.err
	}
}

// drain reads r in ChunkSize pieces until EOF, stopping early once ctx ends.
func drain(ctx context.Context, r io.Reader) (string, error) {
	dec := transform.NewReader(r, unicode.UTF8BOM.NewDecoder())

	var sb strings.Builder
	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := dec.Read(buf)
		sb.Write(buf[:n])
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInputRead, err, "read standard input")
		}
	}
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
