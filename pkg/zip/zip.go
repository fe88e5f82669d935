// Package zip packs a set of in-memory files into a zip archive for
// artifact downloads.
package zip

import (
	"archive/zip"
	"bytes"
)

type File struct {
	Name string
	Data []byte
}

func Archive(files []File) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, file := range files {
		w, err := zw.Create(file.Name)
		if err != nil {
			continue
		}
		if _, err := w.Write(file.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
