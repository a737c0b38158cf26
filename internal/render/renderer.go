package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
)

// BoxCount is the fixed number of character boxes a boxed-number template
// renders. Printed forms have exactly this many cells.
const BoxCount = 18

var (
	// ErrTemplateNotFound means the template ID has no embedded file.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrBoxOverflow means a value does not fit the fixed character boxes.
	// This is a template/data mismatch, not a user error.
	ErrBoxOverflow = errors.New("value longer than character box count")
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend turns final markup into the stored artifact bytes. It is treated
// as a pure function of its input; the default implementation returns the
// markup unchanged.
type Backend interface {
	Render(ctx context.Context, markup []byte) ([]byte, error)
}

// PassthroughBackend stores the markup itself as the artifact.
type PassthroughBackend struct{}

// Render returns the markup bytes unchanged.
func (PassthroughBackend) Render(ctx context.Context, markup []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return markup, nil
}

// Renderer substitutes placeholder fields into a named template and runs
// the result through the backend. Identical template and fields produce
// byte-identical output.
type Renderer struct {
	backend Backend
}

// New constructs a Renderer. A nil backend falls back to passthrough.
func New(backend Backend) *Renderer {
	if backend == nil {
		backend = PassthroughBackend{}
	}
	return &Renderer{backend: backend}
}

// Render loads the template, substitutes every {{name}} placeholder with
// its field value and produces the artifact bytes. Placeholders with no
// matching field are left verbatim so the defect is visible at the call
// site rather than papered over here.
func (r *Renderer) Render(ctx context.Context, templateID string, fields map[string]string) ([]byte, error) {
	tmpl, err := templateFS.ReadFile("templates/" + templateID + ".html")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
	}
	return r.backend.Render(ctx, substitute(tmpl, fields))
}

// BoxFields expands a single value into per-character box fields char0..
// char17, padded with empty strings past the value's length. The overflow
// check runs before any substitution, so a failed expansion leaves no
// partial output.
func BoxFields(value string) (map[string]string, error) {
	runes := []rune(value)
	if len(runes) > BoxCount {
		return nil, fmt.Errorf("%w: %d > %d", ErrBoxOverflow, len(runes), BoxCount)
	}
	out := make(map[string]string, BoxCount)
	for i := 0; i < BoxCount; i++ {
		if i < len(runes) {
			out["char"+strconv.Itoa(i)] = string(runes[i])
		} else {
			out["char"+strconv.Itoa(i)] = ""
		}
	}
	return out, nil
}

// substitute performs a single left-to-right scan over the template. Field
// values are written out directly and never rescanned, so a value that
// itself contains "{{" cannot be reinterpreted as a placeholder.
func substitute(tmpl []byte, fields map[string]string) []byte {
	var out bytes.Buffer
	out.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		open := bytes.Index(tmpl[i:], []byte("{{"))
		if open < 0 {
			out.Write(tmpl[i:])
			break
		}
		open += i
		out.Write(tmpl[i:open])

		close := bytes.Index(tmpl[open+2:], []byte("}}"))
		if close < 0 {
			out.Write(tmpl[open:])
			break
		}
		close += open + 2

		name := string(tmpl[open+2 : close])
		if value, ok := fields[name]; ok {
			out.WriteString(value)
		} else {
			out.Write(tmpl[open : close+2])
		}
		i = close + 2
	}
	return out.Bytes()
}
