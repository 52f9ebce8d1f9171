package format

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cbegin/msq-go/internal/score"
)

type Kind int

const (
	KindStructured Kind = iota
	KindCompact
)

func (k Kind) String() string {
	if k == KindCompact {
		return "msq"
	}
	return "json"
}

// KindOf picks the decoder from a file name or URL.
func KindOf(name string) Kind {
	if strings.HasSuffix(strings.ToLower(name), "msq") {
		return KindCompact
	}
	return KindStructured
}

// Applier is a parsed document ready to be merged into a score.
type Applier interface {
	Apply(s *score.Score)
}

// Parse decodes text of the given kind without touching any score.
func Parse(kind Kind, text string) (Applier, error) {
	if kind == KindCompact {
		c, err := ParseCompact(text)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	d, err := ParseStructured([]byte(text))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// File is one member of an import batch.
type File struct {
	Name string
	Data []byte
}

var numericPart = regexp.MustCompile(`\d+\.\d+|\d+`)

// SequenceNumber is the first decimal number in the base name, or 0.
func SequenceNumber(name string) float64 {
	m := numericPart.FindString(filepath.Base(name))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// SortFiles orders a batch by SequenceNumber, keeping the original order for
// ties.
func SortFiles(files []File) {
	sort.SliceStable(files, func(i, j int) bool {
		return SequenceNumber(files[i].Name) < SequenceNumber(files[j].Name)
	})
}
