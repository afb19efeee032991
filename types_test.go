package shelf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/shelf"
)

func TestFilenamePolicy_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		policy shelf.FilenamePolicy
		valid  bool
	}{
		{name: "sanitize is valid", policy: shelf.PolicySanitize, valid: true},
		{name: "reject is valid", policy: shelf.PolicyReject, valid: true},
		{name: "empty is invalid", policy: "", valid: false},
		{name: "uppercase is invalid", policy: "SANITIZE", valid: false},
		{name: "random string is invalid", policy: "rename", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.policy.IsValid())
		})
	}
}

func TestParseFilenamePolicy(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPolicy shelf.FilenamePolicy
		wantError  bool
	}{
		{name: "parse sanitize", input: "sanitize", wantPolicy: shelf.PolicySanitize},
		{name: "parse reject", input: "reject", wantPolicy: shelf.PolicyReject},
		{name: "empty string returns error", input: "", wantError: true},
		{name: "mixed case returns error", input: "Reject", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := shelf.ParseFilenamePolicy(tt.input)

			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid filename policy")
				assert.Empty(t, policy)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantPolicy, policy)
			}
		})
	}
}

func TestDirEntry_Names(t *testing.T) {
	tests := []struct {
		name        string
		entry       shelf.DirEntry
		wantDisplay string
		wantLink    string
	}{
		{
			name:        "file",
			entry:       shelf.DirEntry{Name: "a.txt", Kind: shelf.EntryFile},
			wantDisplay: "a.txt",
			wantLink:    "a.txt",
		},
		{
			name:        "directory",
			entry:       shelf.DirEntry{Name: "docs", Kind: shelf.EntryDir},
			wantDisplay: "docs/",
			wantLink:    "docs/",
		},
		{
			name:        "symlink to file",
			entry:       shelf.DirEntry{Name: "latest", Kind: shelf.EntrySymlink},
			wantDisplay: "latest@",
			wantLink:    "latest",
		},
		{
			name:        "symlink to directory",
			entry:       shelf.DirEntry{Name: "current", Kind: shelf.EntrySymlink, TargetDir: true},
			wantDisplay: "current@",
			wantLink:    "current/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDisplay, tt.entry.DisplayName())
			assert.Equal(t, tt.wantLink, tt.entry.LinkName())
		})
	}
}

func TestEntryKind_String(t *testing.T) {
	assert.Equal(t, "file", shelf.EntryFile.String())
	assert.Equal(t, "dir", shelf.EntryDir.String())
	assert.Equal(t, "symlink", shelf.EntrySymlink.String())
}

func TestUploadOutcome(t *testing.T) {
	ok := shelf.UploadOutcome{Path: "/srv/a.txt"}
	assert.True(t, ok.OK())
	assert.Empty(t, ok.Reason())

	failed := shelf.UploadOutcome{Err: shelf.ErrTruncated}
	assert.False(t, failed.OK())
	assert.Equal(t, "unexpected end of data", failed.Reason())
}

func TestUploadErrorMessages(t *testing.T) {
	messages := map[error]string{
		shelf.ErrMissingBoundary:   "missing boundary",
		shelf.ErrNoLeadingBoundary: "content does not begin with boundary",
		shelf.ErrNoFilename:        "can't determine file name",
		shelf.ErrCreateFile:        "cannot create file",
		shelf.ErrTruncated:         "unexpected end of data",
	}

	for err, want := range messages {
		assert.Equal(t, want, err.Error())
	}
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tables  shelf.Tables
		wantErr string
	}{
		{name: "valid", tables: shelf.Tables{Uploads: "shelf_uploads"}},
		{name: "empty", tables: shelf.Tables{}, wantErr: "cannot be empty"},
		{name: "uppercase", tables: shelf.Tables{Uploads: "Uploads"}, wantErr: "invalid uploads table name"},
		{name: "sql injection", tables: shelf.Tables{Uploads: "uploads; DROP TABLE x"}, wantErr: "invalid uploads table name"},
		{name: "leading digit", tables: shelf.Tables{Uploads: "1uploads"}, wantErr: "invalid uploads table name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tables.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsValidTableName_Length(t *testing.T) {
	name := make([]byte, 64)
	for i := range name {
		name[i] = 'a'
	}

	assert.True(t, shelf.IsValidTableName(string(name[:63])))
	assert.False(t, shelf.IsValidTableName(string(name)))
}
