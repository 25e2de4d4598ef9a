package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates
var templateFS embed.FS

var errFrontMatter = errors.New("invalid front matter")

// frontMatter is the YAML header of a template file.
type frontMatter struct {
	Subject string `yaml:"subject"`
}

// splitFrontMatter separates a "---" delimited YAML header from the body.
// Content without a header yields an empty frontMatter.
func splitFrontMatter(content []byte) (frontMatter, []byte, error) {
	var fm frontMatter

	delim := []byte("---")
	if !bytes.HasPrefix(content, delim) {
		return fm, content, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(content, delim), "\r\n")

	end := bytes.Index(rest, delim)
	if end == -1 {
		return fm, nil, fmt.Errorf("%w: closing delimiter not found", errFrontMatter)
	}

	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, nil, fmt.Errorf("%w: %v", errFrontMatter, err)
	}

	body := bytes.TrimLeft(rest[end+len(delim):], "\r\n")

	return fm, body, nil
}
