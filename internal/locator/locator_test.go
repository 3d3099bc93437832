package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Locator
		wantErr bool
	}{
		{
			name: "folder with trailing slash",
			raw:  "gs://my-bucket/my_folder/",
			want: Locator{Scheme: "gs", Bucket: "my-bucket", Prefix: "my_folder/"},
		},
		{
			name: "object path",
			raw:  "gs://my-bucket/my_folder/my_obj.txt",
			want: Locator{Scheme: "gs", Bucket: "my-bucket", Prefix: "my_folder/my_obj.txt"},
		},
		{
			name: "nested folders split on first slash only",
			raw:  "gs://b/a/b/c",
			want: Locator{Scheme: "gs", Bucket: "b", Prefix: "a/b/c"},
		},
		{
			name: "s3 scheme",
			raw:  "s3://runs/cromwell-executions/",
			want: Locator{Scheme: "s3", Bucket: "runs", Prefix: "cromwell-executions/"},
		},
		{
			name:    "no scheme prefix",
			raw:     "my-bucket/my_folder/my_obj.txt",
			wantErr: true,
		},
		{
			name:    "no folder",
			raw:     "gs://my-bucket",
			wantErr: true,
		},
		{
			name:    "empty folder",
			raw:     "gs://my-bucket/",
			wantErr: true,
		},
		{
			name:    "empty bucket",
			raw:     "gs:///folder",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			raw:     "ftp://host/folder",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidLocator)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocator_URL(t *testing.T) {
	loc := Locator{Scheme: "gs", Bucket: "my-bucket", Prefix: "my_folder/"}

	assert.Equal(t, "gs://my-bucket/my_folder/a/stdout", loc.URL("my_folder/a/stdout"))
	assert.Equal(t, "gs://my-bucket/my_folder/", loc.String())
}
