package sgeenv

import (
	"reflect"
	"testing"
)

func TestEvalCpusPerNode(t *testing.T) {
	testCases := []struct {
		spec      string
		want      uint64
		expectErr bool
	}{
		{spec: "4", want: 4},
		{spec: "1(x2),2(x3)", want: 8},
		{spec: "16(x4)", want: 64},
		{spec: "2,2,2", want: 6},
		{spec: "", expectErr: true},
		{spec: "abc", expectErr: true},
		{spec: "2(y3)", expectErr: true},
		{spec: "2(x3", expectErr: true},
		{spec: "2(x0)", expectErr: true},
		{spec: "0", expectErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.spec, func(t *testing.T) {
			got, err := EvalCpusPerNode(tc.spec)
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("EvalCpusPerNode(%q) = %d, want %d", tc.spec, got, tc.want)
			}
		})
	}
}

func TestMirror(t *testing.T) {
	env := map[string]string{
		"SLURM_SUBMIT_DIR":        "/home/user/project",
		"SLURM_JOB_ID":            "12345",
		"SLURM_ARRAY_JOB_ID":      "12300",
		"SLURM_JOB_NAME":          "weather-run",
		"SLURM_JOB_NUM_NODES":     "2",
		"SLURM_JOB_CPUS_PER_NODE": "1(x2),2(x3)",
		"SLURM_ARRAY_TASK_ID":     "7",
		"SLURM_ARRAY_TASK_MIN":    "1",
		"SLURM_ARRAY_TASK_MAX":    "10",
		"SLURM_ARRAY_TASK_STEP":   "3",
	}
	getenv := func(key string) string { return env[key] }

	got := Mirror(getenv)
	want := map[string]string{
		"SGE_O_WORKDIR":     "/home/user/project",
		"JOB_ID":            "12300",
		"JOB_NAME":          "weather-run",
		"NHOSTS":            "2",
		"NSLOTS":            "8",
		"TASK_ID":           "7",
		"SGE_TASK_FIRST":    "1",
		"SGE_TASK_LAST":     "10",
		"SGE_TASK_STEPSIZE": "3",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Mirror mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestMirrorNonArrayJob(t *testing.T) {
	env := map[string]string{
		"SLURM_JOB_ID": "500",
	}
	got := Mirror(func(key string) string { return env[key] })

	if got["JOB_ID"] != "500" {
		t.Errorf("JOB_ID = %q, want 500", got["JOB_ID"])
	}
	if got["NHOSTS"] != "1" {
		t.Errorf("NHOSTS = %q, want default 1", got["NHOSTS"])
	}
	if _, found := got["TASK_ID"]; found {
		t.Errorf("TASK_ID present for non-array job")
	}
}

func TestTmpDirPath(t *testing.T) {
	testCases := []struct {
		name      string
		base      string
		jobID     uint32
		stepID    uint32
		batchStep bool
		want      string
	}{
		{"batch step", "/scratch", 12345, 0, true, "/scratch/12345"},
		{"launched step", "/scratch", 12345, 2, false, "/scratch/12345.2"},
		{"default base", "", 7, 0, true, "/tmp/7"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := TmpDirPath(tc.base, tc.jobID, tc.stepID, tc.batchStep)
			if got != tc.want {
				t.Fatalf("TmpDirPath = %q, want %q", got, tc.want)
			}
		})
	}
}
