package standards

import "strings"

// File is a source file handed to rules.
type File struct {
	Name  string
	Data  []byte
	Lines []string
}

// NewFile splits data into lines. A trailing newline does not produce an
// extra empty line and carriage returns are dropped.
func NewFile(name string, data []byte) *File {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")

	var lines []string
	if content != "" || len(data) > 0 {
		lines = strings.Split(content, "\n")
	}
	return &File{Name: name, Data: data, Lines: lines}
}
