package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form is a multipart body for Upload.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  io.Reader
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field appends a plain form value.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File appends a file part read from content.
func (f *Form) File(field, filename string, content io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, content: content})
	return f
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", file.field, err)
		}
		if file.content != nil {
			if _, err := io.Copy(part, file.content); err != nil {
				return nil, "", fmt.Errorf("copy part %s: %w", file.field, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
