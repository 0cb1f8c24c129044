package query

import (
	"net/url"
	"strings"
)

// ParseValues turns query string values into content request parameters.
// "pages[title]=x" nests under the "pages" key, repeated keys become a value
// list and a single value stays a plain string. Nested keys win over a plain
// key of the same name.
func ParseValues(values url.Values) Params {
	params := Params{}

	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		var v any = vs[0]
		if len(vs) > 1 {
			v = append([]string(nil), vs...)
		}

		outer, inner, ok := splitNested(key)
		if !ok {
			if _, nested := params[key].(Params); !nested {
				params[key] = v
			}
			continue
		}

		sub, isParams := params[outer].(Params)
		if !isParams {
			sub = Params{}
			params[outer] = sub
		}
		sub[inner] = v
	}

	return params
}

func splitNested(key string) (string, string, bool) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return "", "", false
	}
	inner := key[open+1 : len(key)-1]
	if inner == "" {
		return "", "", false
	}
	return key[:open], inner, true
}
