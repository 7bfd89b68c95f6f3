package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/lvillar/doclayout/layout"
	"github.com/lvillar/doclayout/placeholder"
	"github.com/lvillar/doclayout/store"
)

// RegisterDefaultResources adds the built-in template resources to the
// server. Resources use the template:// scheme.
func RegisterDefaultResources(s *Server, st *store.Store) {
	s.AddResource(Resource{
		URI:         "template://list",
		Name:        "Template Names",
		Description: "Names of the stored templates in order, with the active template marked.",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			return jsonContent(uri, map[string]interface{}{
				"templates": st.Names(),
				"active":    st.ActiveName(),
			})
		},
	})

	s.AddResource(Resource{
		URI:         "template://active",
		Name:        "Active Template",
		Description: "The template used for new documents, as JSON.",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			t, ok := st.Active()
			if !ok {
				return nil, fmt.Errorf("no active template")
			}
			return jsonContent(uri, t)
		},
	})

	s.AddResource(Resource{
		URI:         "template://get",
		Name:        "Template",
		Description: "A single template as JSON. Pass the name as a query parameter: template://get?name=DEMO",
		MIMEType:    "application/json",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			name := extractNameFromURI(uri)
			if name == "" {
				name = layout.DemoName
			}
			t, err := st.Get(name)
			if err != nil {
				return nil, err
			}
			return jsonContent(uri, t)
		},
	})

	s.AddResource(Resource{
		URI:         "template://tokens",
		Name:        "Placeholder Tokens",
		Description: "The placeholder tokens text elements may contain, such as {cliente} or {total}.",
		MIMEType:    "text/plain",
		Handler: func(ctx context.Context, uri string) ([]ResourceContent, error) {
			var b strings.Builder
			for _, tok := range placeholder.Tokens() {
				fmt.Fprintf(&b, "{%s}\n", tok)
			}
			return []ResourceContent{{URI: uri, MIMEType: "text/plain", Text: b.String()}}, nil
		},
	})
}

func extractNameFromURI(uri string) string {
	// Parse name from URI like template://get?name=Mi%20Plantilla
	idx := strings.Index(uri, "?")
	if idx < 0 {
		return ""
	}
	q, err := url.ParseQuery(uri[idx+1:])
	if err != nil {
		return ""
	}
	return q.Get("name")
}

func jsonContent(uri string, v interface{}) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}
