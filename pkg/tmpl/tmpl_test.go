package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "hello {{ .Name }}",
			data: map[string]string{"Name": "world"},
			want: "hello world",
		},
		{
			name: "multiple variables",
			tmpl: `cd "{{ .Path }}" && echo "{{ .Message }}"`,
			data: map[string]string{
				"Path":    "/tmp/repo",
				"Message": "task: create translation todo 'x'",
			},
			want: `cd "/tmp/repo" && echo "task: create translation todo 'x'"`,
		},
		{
			name: "struct data",
			tmpl: "{{ .Shard }} at {{ .SHA }}",
			data: struct {
				Shard string
				SHA   string
			}{Shard: "intro", SHA: "4f3a2b1"},
			want: "intro at 4f3a2b1",
		},
		{
			name: "no variables",
			tmpl: "static string",
			data: nil,
			want: "static string",
		},
		{
			name:    "missing key errors",
			tmpl:    "{{ .Missing }}",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name:    "invalid template syntax",
			tmpl:    "{{ .Name }",
			data:    map[string]string{"Name": "test"},
			wantErr: true,
		},
		{
			name: "empty value is valid",
			tmpl: "prefix{{ .Name }}suffix",
			data: map[string]string{"Name": ""},
			want: "prefixsuffix",
		},
		{
			name: "join function",
			tmpl: `{{ join .Langs ", " }}`,
			data: map[string][]string{"Langs": {"de", "fr", "es"}},
			want: "de, fr, es",
		},
		{
			name: "shq function with spaces",
			tmpl: "notify-send {{ .Message | shq }}",
			data: map[string]string{"Message": "hello world"},
			want: "notify-send 'hello world'",
		},
		{
			name: "shq function with single quotes",
			tmpl: "notify-send {{ .Message | shq }}",
			data: map[string]string{"Message": "it's a test"},
			want: `notify-send 'it'\''s a test'`,
		},
		{
			name: "shq function with double quotes",
			tmpl: "notify-send {{ .Message | shq }}",
			data: map[string]string{"Message": `say "hello"`},
			want: `notify-send 'say "hello"'`,
		},
		{
			name: "shq function with empty string",
			tmpl: "notify-send {{ .Message | shq }}",
			data: map[string]string{"Message": ""},
			want: "notify-send ''",
		},
		{
			name: "shq function with special chars",
			tmpl: "notify-send {{ .Message | shq }}",
			data: map[string]string{"Message": "$(whoami) && rm -rf /"},
			want: "notify-send '$(whoami) && rm -rf /'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.tmpl, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
