// Package checks implements the thin downstream collaborators spec.md
// describes only through the token-stream interface the core produces:
// variable-naming convention checking and library-function-usage checking,
// grounded on the original checker's checknaming.cpp/checkfunctions.cpp and
// its library.h XML rule-file format.
package checks

import (
	"encoding/xml"
	"fmt"
	"os"
)

// LibraryFunction is one <function> rule entry from a library.h-style XML
// rule file: a function name, whether its return value must not be
// ignored, and its minimum argument count (zero or negative means unchecked).
type LibraryFunction struct {
	Name      string `xml:"name,attr"`
	UseRetVal bool   `xml:"use-retval,attr"`
	MinArgs   int    `xml:"min-args,attr"`
}

type libraryRules struct {
	XMLName   xml.Name          `xml:"def"`
	Functions []LibraryFunction `xml:"function"`
}

// Library is the loaded set of known library functions, indexed by name.
type Library map[string]LibraryFunction

// LoadLibrary parses one library.h-style XML rule file, the format
// spec.md's "XML rule-file parsing" external collaborator consumes. No
// third-party XML library appears anywhere in the retrieval pack, so this
// uses the standard library decoder (see DESIGN.md).
func LoadLibrary(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}
	var parsed libraryRules
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}
	lib := make(Library, len(parsed.Functions))
	for _, fn := range parsed.Functions {
		lib[fn.Name] = fn
	}
	return lib, nil
}

// Merge folds other's entries into lib, overwriting on name collision, so
// rule files merged later take precedence.
func (lib Library) Merge(other Library) {
	for name, fn := range other {
		lib[name] = fn
	}
}
