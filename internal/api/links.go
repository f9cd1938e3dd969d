package api

import (
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</viewshed>; rel="viewshed"`,
		`</api/v1/scenarios>; rel="scenarios"`,
		`</api/v1/history>; rel="history"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/scenarios>; rel="scenarios"`,
	},
	"/api/v1/scenarios": {
		`</viewshed>; rel="viewshed"`,
		`</api/v1/history>; rel="history"`,
	},
	"/api/v1/scenarios/{id}": {
		`</api/v1/scenarios>; rel="collection"`,
	},
	"/api/v1/history": {
		`</api/v1/scenarios>; rel="scenarios"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link headers.
func LinkTransformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range links[op.Path] {
			ctx.AppendHeader("Link", link)
		}

		// Item endpoints get a self link
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}

		return v, nil
	}
}
