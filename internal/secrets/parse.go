package secrets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/secretkeeper/internal/codec"
)

// DecodeFunc rebuilds a secret from the raw fields of its canonical line.
// fields[0] is the type tag; the remaining fields are still encoded.
type DecodeFunc func(fields []string) (Secret, error)

var (
	decodersMu sync.RWMutex
	decoders   = make(map[string]DecodeFunc)
)

// Register makes a decoder available to Parse under the given type tag.
// It panics if the tag is empty, fn is nil, or the tag is registered twice.
func Register(tag string, fn DecodeFunc) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	if tag == "" || fn == nil {
		panic("secrets: Register with empty tag or nil decoder")
	}
	if _, dup := decoders[tag]; dup {
		panic("secrets: Register called twice for type " + tag)
	}
	decoders[tag] = fn
}

// Parse rebuilds a secret from its canonical line. The first comma-separated
// token selects the decoder.
func Parse(line string) (Secret, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := codec.Split(line)

	decodersMu.RLock()
	fn, ok := decoders[fields[0]]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, fields[0])
	}
	return fn(fields)
}

// Summary renders a one-line description that carries no sensitive field.
func Summary(s Secret) string {
	return fmt.Sprintf("%s [%s] (%s)", s.Name(), s.FolderName(), s.Type())
}

func decodeFields(raw []string) ([]string, error) {
	out := make([]string, len(raw))
	for i, f := range raw {
		v, err := codec.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		out[i] = v
	}
	return out, nil
}
