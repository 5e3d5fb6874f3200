package detect

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ParseStatus is the parse health of a single config file.
type ParseStatus string

const (
	// ParseValid means the file exists and parsed cleanly.
	ParseValid ParseStatus = "valid"
	// ParseInvalid means the file exists but failed structural parsing.
	ParseInvalid ParseStatus = "invalid"
	// ParseNotFound means the file does not exist.
	ParseNotFound ParseStatus = "not-found"
)

// ParseError is structured detail about a parse failure. Line and Column are
// zero when the underlying format does not report them.
type ParseError struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ConfigPathStatus records the existence and parse health of a single config
// file path.
type ConfigPathStatus struct {
	Path   string      `json:"path"`
	Exists bool        `json:"exists"`
	Status ParseStatus `json:"status"`
	Error  *ParseError `json:"error,omitempty"`
}

// CheckConfigPath produces a ConfigPathStatus for path using the supplied
// structural parse check. It never returns an error; failures are captured
// in the status value.
func CheckConfigPath(path string, validate func([]byte) error) ConfigPathStatus {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ConfigPathStatus{Path: path, Status: ParseNotFound}
		}
		return ConfigPathStatus{
			Path:   path,
			Exists: true,
			Status: ParseInvalid,
			Error:  &ParseError{Message: err.Error()},
		}
	}

	if err := validate(data); err != nil {
		return ConfigPathStatus{
			Path:   path,
			Exists: true,
			Status: ParseInvalid,
			Error:  ParseDetail(err, data),
		}
	}

	return ConfigPathStatus{Path: path, Exists: true, Status: ParseValid}
}

// ParseDetail converts a parse error into structured detail, deriving line
// and column information when the underlying decoder reports a position.
func ParseDetail(err error, data []byte) *ParseError {
	detail := &ParseError{Message: err.Error()}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		detail.Line, detail.Column = lineColumn(data, syntaxErr.Offset)
		return detail
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		detail.Line, detail.Column = decodeErr.Position()
		return detail
	}

	// hujson reports byte offsets in its message but does not expose them as
	// a typed field; fall back to a plain JSON decode to recover a position.
	var probe any
	if jsonErr := json.Unmarshal(data, &probe); jsonErr != nil {
		if errors.As(jsonErr, &syntaxErr) {
			detail.Line, detail.Column = lineColumn(data, syntaxErr.Offset)
		}
	}

	return detail
}

// lineColumn translates a byte offset into 1-based line and column numbers.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset < 0 || offset > int64(len(data)) {
		return 0, 0
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	column := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, column
}
