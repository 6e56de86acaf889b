package console

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// codec converts between UTF-8 strings and a single-byte code page.
type codec struct {
	name string
	enc  *encoding.Encoder
	dec  *encoding.Decoder
}

func (c *codec) encode(s string) ([]byte, error) {
	b, err := c.enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("console: encoding to %s: %w", c.name, err)
	}
	return b, nil
}

func (c *codec) decode(b []byte) (string, error) {
	s, err := c.dec.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("console: decoding from %s: %w", c.name, err)
	}
	return string(s), nil
}

// codepages lists the supported code page names.
var codepages = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"koi8-r":       charmap.KOI8R,
}

// WithCodepage transcodes output to, and input from, the named single-byte
// code page. Characters the code page cannot represent are written as its
// replacement byte. "" and "utf-8" leave text untouched.
func WithCodepage(name string) Option {
	return func(c *Console) error {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || key == "utf-8" || key == "utf8" {
			c.codec = nil
			return nil
		}
		cm, ok := codepages[key]
		if !ok {
			return fmt.Errorf("console: unknown code page %q", name)
		}
		c.codec = &codec{
			name: key,
			enc:  encoding.ReplaceUnsupported(cm.NewEncoder()),
			dec:  cm.NewDecoder(),
		}
		return nil
	}
}
