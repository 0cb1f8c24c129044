package query

import (
	"log/slog"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
)

// CompileOrder resolves the order of one plan: the explicit values first, then
// the content type's default sort, then the recency column descending.
// RANDOM becomes a random token in the relational dialect only; when the
// merged result is shuffled anyway it is skipped.
func CompileOrder(ct *schema.ContentType, dialect Dialect, strategy OrderStrategy, explicit ...string) []OrderToken {
	var tokens []OrderToken

	for _, value := range explicit {
		for _, part := range splitTrim(value, ",") {
			if strings.EqualFold(part, "RANDOM") {
				switch {
				case strategy == OrderRandom:
				case dialect == Relational:
					tokens = append(tokens, OrderToken{Random: true})
				default:
					slog.Debug("random order is not supported by the remote dialect", "contenttype", ct.Slug)
				}
				continue
			}

			if t, ok := columnOrder(ct, part); ok {
				tokens = append(tokens, t)
			} else {
				slog.Debug("dropping order on unknown column", "contenttype", ct.Slug, "order", part)
			}
		}
	}
	if len(tokens) > 0 {
		return tokens
	}

	for _, part := range splitTrim(ct.Sort, ",") {
		if t, ok := columnOrder(ct, part); ok {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) > 0 {
		return tokens
	}

	return []OrderToken{{Field: schema.Recency, Desc: true}}
}

func columnOrder(ct *schema.ContentType, value string) (OrderToken, bool) {
	desc := strings.HasPrefix(value, "-")
	name := strings.TrimLeft(value, "+-")
	if !ct.IsColumn(name, false) {
		return OrderToken{}, false
	}
	return OrderToken{Field: name, Desc: desc}, true
}
