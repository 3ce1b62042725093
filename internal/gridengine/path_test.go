package gridengine

import (
	"testing"
)

func TestTranslateStdioPath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantPath string
		wantOK   bool
	}{
		{
			name:     "pseudo-variables translated",
			input:    "$USER/out.$JOB_ID",
			wantPath: "%u/out.%j",
			wantOK:   true,
		},
		{
			name:     "job name matched before job id",
			input:    "$JOB_NAME.$TASK_ID.log",
			wantPath: "%x.%a.log",
			wantOK:   true,
		},
		{
			name:     "hostname token",
			input:    "/logs/$HOSTNAME/run",
			wantPath: "/logs/%N/run",
			wantOK:   true,
		},
		{
			name:     "unknown dollar token left alone",
			input:    "$HOME/out",
			wantPath: "$HOME/out",
			wantOK:   true,
		},
		{
			name:     "leading colon marker consumed",
			input:    ":path/out",
			wantPath: "path/out",
			wantOK:   true,
		},
		{
			name:     "host-qualified falls through to next alternative",
			input:    "node01:/tmp/out,fallback.log",
			wantPath: "fallback.log",
			wantOK:   true,
		},
		{
			name:   "every alternative host-qualified",
			input:  "node01:/tmp/out,node02:/tmp/out",
			wantOK: false,
		},
		{
			name:     "escaped comma kept in path",
			input:    `a\,b.log`,
			wantPath: "a,b.log",
			wantOK:   true,
		},
		{
			name:     "escaped colon is not host qualification",
			input:    `a\:b.log`,
			wantPath: "a:b.log",
			wantOK:   true,
		},
		{
			name:   "empty argument",
			input:  "",
			wantOK: false,
		},
		{
			name:   "lone colon",
			input:  ":",
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path, ok := TranslateStdioPath(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && path != tc.wantPath {
				t.Fatalf("path = %q, want %q", path, tc.wantPath)
			}
		})
	}
}
