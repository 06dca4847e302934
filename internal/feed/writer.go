// internal/feed/writer.go
package feed

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
)

// Render: deklaracja + wcięcie dwiema spacjami, bez pustych linii.
func Render(cat Catalog) ([]byte, error) {
	body, err := xml.MarshalIndent(cat, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	for _, line := range bytes.Split(body, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteFile nadpisuje cały plik; sukces dopiero po flush + close.
func WriteFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}
