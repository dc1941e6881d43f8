package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"syscall"

	"github.com/BurntSushi/toml"
	inertia "github.com/vango-dev/inertia"
	"github.com/vango-dev/inertia/pkg/assets"
	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/negotiator"
	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

// rules map recognized errors to codes; the first match wins.
var rules = []struct {
	code  string
	match func(error) bool
}{
	{"E100", is(config.ErrParse)},
	{"E101", is(config.ErrUnknownFormat)},
	{"E102", is(config.ErrSSREntrypoint)},
	{"E103", is(config.ErrSSRPolicy)},
	{"E104", is(config.ErrSSREndpoint)},
	{"E120", is(assets.ErrInvalidManifest)},
	{"E121", is(assets.ErrTooLarge)},
	{"E141", is(ssr.ErrEmptyResult)},
	{"E142", is(ssr.ErrNoRenderer)},
	{"E140", as[*ssr.Error]},
	{"E160", is(negotiator.ErrNoComponent)},
	{"E161", as[*shared.Error]},
	{"E162", as[*negotiator.PropError]},
	{"E182", is(inertia.ErrTemplate)},
	{"E181", is(syscall.EADDRINUSE)},
	{"E180", is(fs.ErrNotExist)},
}

func is(target error) func(error) bool {
	return func(err error) bool { return stderrors.Is(err, target) }
}

func as[T error](err error) bool {
	var target T
	return stderrors.As(err, &target)
}

// Classify wraps err in the coded Error for its kind. Errors that are
// already coded are returned as-is; unrecognized errors get an uncoded
// CLI error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded
	}
	for _, r := range rules {
		if r.match(err) {
			return New(r.code).Wrap(err)
		}
	}
	return &Error{Category: CategoryCLI, Message: "Command failed", Wrapped: err}
}

// ClassifyFile is Classify for errors about a file, usually a
// configuration file. Parse errors carry the line they occurred on.
func ClassifyFile(err error, path string) *Error {
	e := Classify(err)
	if e == nil || path == "" {
		return e
	}
	return e.WithLocation(path, lineOf(err, path), 0)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// lineOf extracts the line number from a decoder error, or 0.
func lineOf(err error, path string) int {
	var terr toml.ParseError
	if stderrors.As(err, &terr) {
		return terr.Position.Line
	}
	var serr *json.SyntaxError
	if stderrors.As(err, &serr) {
		return lineAtOffset(path, serr.Offset)
	}
	var uerr *json.UnmarshalTypeError
	if stderrors.As(err, &uerr) {
		return lineAtOffset(path, uerr.Offset)
	}
	if stderrors.Is(err, config.ErrParse) {
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// lineAtOffset returns the 1-based line of the last byte read before a
// decoder failed, given the decoder's byte count.
func lineAtOffset(path string, offset int64) int {
	data, err := os.ReadFile(path)
	if err != nil || offset <= 0 {
		return 0
	}
	end := min(offset-1, int64(len(data)))
	return bytes.Count(data[:end], []byte("\n")) + 1
}
