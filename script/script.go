// Package script reads SQL scripts and splits them into statements.
package script

import (
	"bufio"
	"bytes"
	"io"

	"xorkevin.dev/kerrors"
)

var (
	// ErrUnclosedQuote is returned when a script ends inside a quoted string
	ErrUnclosedQuote errUnclosedQuote
	// ErrUnclosedComment is returned when a script ends inside a block comment
	ErrUnclosedComment errUnclosedComment
)

type (
	errUnclosedQuote   struct{}
	errUnclosedComment struct{}
)

func (e errUnclosedQuote) Error() string {
	return "Unclosed quote in script"
}

func (e errUnclosedComment) Error() string {
	return "Unclosed block comment in script"
}

type (
	// Reader yields SQL statements from a script one at a time
	Reader struct {
		reader *bufio.Reader
		buffer bytes.Buffer
		eof    bool
	}
)

func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReader(r),
	}
}

// Read returns the next statement of the script with comments removed and
// surrounding whitespace trimmed. Semicolons inside quoted strings and
// comments do not terminate a statement. A final statement without a
// terminating semicolon is still returned. Read returns [io.EOF] when the
// script has no further statements.
func (r *Reader) Read() (string, error) {
	for {
		if r.eof {
			return "", io.EOF
		}
		stmt, err := r.next()
		if err != nil {
			return "", err
		}
		if stmt != "" {
			return stmt, nil
		}
	}
}

func (r *Reader) next() (string, error) {
	r.buffer.Reset()
	for {
		b, err := r.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				r.eof = true
				return r.statement(), nil
			}
			return "", kerrors.WithMsg(err, "Failed reading script")
		}

		switch b {
		case ';':
			return r.statement(), nil
		case '\'', '"', '`':
			r.buffer.WriteByte(b)
			if err := r.copyQuoted(b); err != nil {
				return "", err
			}
		case '-':
			if r.peek() == '-' {
				if err := r.skipLineComment(); err != nil {
					return "", err
				}
				r.buffer.WriteByte('\n')
			} else {
				r.buffer.WriteByte(b)
			}
		case '#':
			if err := r.skipLineComment(); err != nil {
				return "", err
			}
			r.buffer.WriteByte('\n')
		case '/':
			if r.peek() == '*' {
				if err := r.skipBlockComment(); err != nil {
					return "", err
				}
				r.buffer.WriteByte(' ')
			} else {
				r.buffer.WriteByte(b)
			}
		default:
			r.buffer.WriteByte(b)
		}
	}
}

func (r *Reader) statement() string {
	return string(bytes.TrimSpace(r.buffer.Bytes()))
}

func (r *Reader) peek() byte {
	b, err := r.reader.Peek(1)
	if err != nil {
		return 0
	}
	return b[0]
}

// copyQuoted copies bytes until the closing quote, honoring backslash escapes
// and doubled quotes.
func (r *Reader) copyQuoted(quote byte) error {
	for {
		b, err := r.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return kerrors.WithKind(nil, ErrUnclosedQuote, "Script ends inside quoted string")
			}
			return kerrors.WithMsg(err, "Failed reading script")
		}
		r.buffer.WriteByte(b)
		switch b {
		case '\\':
			c, err := r.reader.ReadByte()
			if err != nil {
				if err == io.EOF {
					return kerrors.WithKind(nil, ErrUnclosedQuote, "Script ends inside quoted string")
				}
				return kerrors.WithMsg(err, "Failed reading script")
			}
			r.buffer.WriteByte(c)
		case quote:
			if r.peek() == quote {
				c, _ := r.reader.ReadByte()
				r.buffer.WriteByte(c)
				continue
			}
			return nil
		}
	}
}

func (r *Reader) skipLineComment() error {
	for {
		b, err := r.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return kerrors.WithMsg(err, "Failed reading script")
		}
		if b == '\n' {
			return nil
		}
	}
}

func (r *Reader) skipBlockComment() error {
	// consume the * of the opening /*
	if _, err := r.reader.ReadByte(); err != nil {
		if err == io.EOF {
			return kerrors.WithKind(nil, ErrUnclosedComment, "Script ends inside block comment")
		}
		return kerrors.WithMsg(err, "Failed reading script")
	}
	for {
		b, err := r.reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return kerrors.WithKind(nil, ErrUnclosedComment, "Script ends inside block comment")
			}
			return kerrors.WithMsg(err, "Failed reading script")
		}
		if b == '*' && r.peek() == '/' {
			if _, err := r.reader.ReadByte(); err != nil && err != io.EOF {
				return kerrors.WithMsg(err, "Failed reading script")
			}
			return nil
		}
	}
}

// Split reads an entire script and returns its statements in order.
func Split(r io.Reader) ([]string, error) {
	reader := NewReader(r)
	var stmts []string
	for {
		stmt, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return stmts, nil
			}
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}
