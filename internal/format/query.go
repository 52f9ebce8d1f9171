package format

import (
	"net/url"
	"strings"
)

// HasScoreQuery reports whether v carries an inline score.
func HasScoreQuery(v url.Values) bool {
	return v.Get("SCORE") != "" || v.Get("S") != ""
}

// AssembleQuery builds compact text from the long or short query parameters.
func AssembleQuery(v url.Values) (string, error) {
	pick := func(long, short string) string {
		if s := v.Get(long); s != "" {
			return s
		}
		return v.Get(short)
	}
	vals := []string{
		pick("SCORE", "S"),
		pick("TEMPO", "T"),
		pick("LOOP", "L"),
		pick("END", "E"),
		pick("TIME44", "B"),
	}
	for i, val := range vals {
		if val == "" {
			k := compactKeywords[i]
			return "", &FormatError{Line: i, Want: k, Msg: "missing query parameter " + k, Err: ErrMissingParams}
		}
	}
	vals[2] = truthy(vals[2])
	vals[4] = truthy(vals[4])
	for i, k := range compactKeywords {
		vals[i] = k + "=" + vals[i]
	}
	return strings.Join(vals, "\n"), nil
}

func truthy(s string) string {
	switch strings.ToUpper(s) {
	case "T", "TRUE":
		return "TRUE"
	}
	return "FALSE"
}
