package query

// Distribute nests filter parameters per content type. A single requested type
// receives all parameters. With several types, keys naming a requested type
// hold that type's own parameters and every other key is a global filter copied
// into each type without overriding a key the type already sets.
func Distribute(types []string, filters Params) map[string]Params {
	perType := make(map[string]Params, len(types))

	if len(types) == 1 {
		perType[types[0]] = copyParams(filters)
		return perType
	}

	requested := make(map[string]bool, len(types))
	for _, t := range types {
		requested[t] = true
		perType[t] = Params{}
	}

	for key, value := range filters {
		if requested[key] {
			for k, v := range nested(value) {
				perType[key][k] = v
			}
		}
	}

	for key, value := range filters {
		if requested[key] {
			continue
		}
		for _, t := range types {
			if _, set := perType[t][key]; !set {
				perType[t][key] = value
			}
		}
	}

	return perType
}

func nested(v any) Params {
	switch m := v.(type) {
	case Params:
		return m
	case map[string]any:
		return m
	default:
		return nil
	}
}

func copyParams(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
