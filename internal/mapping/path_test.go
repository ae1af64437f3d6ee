package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []PathSegment
		wantErr bool
	}{
		{name: "simple", path: "Name", want: []PathSegment{{Name: "Name"}}},
		{name: "nested", path: "Address.Street", want: []PathSegment{{Name: "Address"}, {Name: "Street"}}},
		{name: "method", path: "GetName()", want: []PathSegment{{Name: "GetName", Method: true}}},
		{
			name: "nested method",
			path: "Customer.GetCity()",
			want: []PathSegment{{Name: "Customer"}, {Name: "GetCity", Method: true}},
		},
		{name: "underscore", path: "first_name", want: []PathSegment{{Name: "first_name"}}},
		{name: "unicode", path: "Größe", want: []PathSegment{{Name: "Größe"}}},
		{name: "empty", path: "", wantErr: true},
		{name: "empty segment", path: "A..B", wantErr: true},
		{name: "trailing dot", path: "A.", wantErr: true},
		{name: "element path", path: "Items[].ID", wantErr: true},
		{name: "leading digit", path: "1st", wantErr: true},
		{name: "dash", path: "first-name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Segments)
			assert.Equal(t, tt.path, got.String())
		})
	}
}

func TestPathSegmentString(t *testing.T) {
	assert.Equal(t, "Name", PathSegment{Name: "Name"}.String())
	assert.Equal(t, "GetName()", PathSegment{Name: "GetName", Method: true}.String())
}
