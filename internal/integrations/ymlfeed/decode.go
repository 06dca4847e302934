// internal/integrations/ymlfeed/decode.go
package ymlfeed

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// walkOffers przechodzi dokument yml_catalog strumieniowo i woła fn dla każdego <offer>.
// fn musi skonsumować element (DecodeElement albo Skip).
func walkOffers(rd io.Reader, fn func(dec *xml.Decoder, se *xml.StartElement) error) error {
	dec := xml.NewDecoder(bufio.NewReader(rd))
	dec.CharsetReader = func(cs string, in io.Reader) (io.Reader, error) {
		return charset.NewReaderLabel(normalizeCharset(cs), in)
	}

	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			if !strings.EqualFold(se.Name.Local, "yml_catalog") {
				return fmt.Errorf("unexpected root <%s>", se.Name.Local)
			}
			sawRoot = true
			continue
		}
		if !strings.EqualFold(se.Name.Local, "offer") {
			continue
		}
		if err := fn(dec, &se); err != nil {
			return err
		}
	}

	if !sawRoot {
		return errors.New("empty document")
	}
	return nil
}

// normalizeCharset mapuje nietypowe etykiety na nazwy rozpoznawane przez charset.NewReaderLabel
func normalizeCharset(cs string) string {
	c := strings.TrimSpace(strings.ToLower(cs))
	switch c {
	case "cp1251", "windows1251", "win-1251":
		return "windows-1251"
	case "latin ii", "latin-2", "latin2", "iso8859-2", "iso_8859-2":
		return "iso-8859-2"
	case "cp1250", "windows1250", "win-1250":
		return "windows-1250"
	default:
		return c
	}
}
