package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zombiearmy/horde/pkg/core"
)

// Reply is written once per input line.
type Reply struct {
	Command string `json:"command" yaml:"command"`
	OK      bool   `json:"ok" yaml:"ok"`
	Result  any    `json:"result,omitempty" yaml:"result,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`

	// Code is set for game rule failures.
	Code *core.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
}

func newReply(command string, result any, err error) Reply {
	if err == nil {
		return Reply{Command: command, OK: true, Result: result}
	}
	r := Reply{Command: command, Error: err.Error()}
	var gameErr *core.GameError
	if errors.As(err, &gameErr) {
		code := gameErr.Code
		r.Code = &code
	}
	return r
}

// replyWriter renders replies as JSON lines or YAML documents.
type replyWriter struct {
	out    io.Writer
	format string
}

func newReplyWriter(out io.Writer, format string) (*replyWriter, error) {
	format = strings.ToLower(format)
	switch format {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &replyWriter{out: out, format: format}, nil
}

func (w *replyWriter) Write(r Reply) error {
	if w.format == "json" {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w.out, "%s\n", data)
		return err
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w.out, "---\n%s", data)
	return err
}

// parseLine splits a command line into the command and its args.
// Blank lines and # comments yield ok=false.
func parseLine(line string) (command string, args []string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil, false
	}
	fields := strings.Fields(line)
	return fields[0], fields[1:], true
}
