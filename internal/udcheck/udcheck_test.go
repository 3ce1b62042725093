package udcheck

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

func TestBuildJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.qs")
	if err := os.WriteFile(path, []byte("#!/bin/bash\necho hi\n"), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}

	FlagAccount = "labgrp"
	FlagTime = "01:30:00"
	FlagMemPerCpu = 2048
	FlagGid = 1500
	defer func() {
		FlagAccount, FlagTime, FlagMemPerCpu, FlagGid = "", "", 0, 0
	}()

	job, err := buildJob(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Account != "labgrp" || job.GroupID != 1500 {
		t.Errorf("account/gid = %q/%d", job.Account, job.GroupID)
	}
	if job.TimeLimit != 90 {
		t.Errorf("TimeLimit = %d, want 90", job.TimeLimit)
	}
	if job.PnMinMemory != 2048|api.MemPerCPU {
		t.Errorf("PnMinMemory = %#x, want 2048 MiB per CPU", job.PnMinMemory)
	}
	if !strings.HasPrefix(job.Script, "#!/bin/bash") {
		t.Errorf("script not loaded: %q", job.Script)
	}
}

func TestBuildJobInvalidTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.qs")
	if err := os.WriteFile(path, []byte("#!/bin/bash\n"), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}

	FlagTime = "1:30"
	defer func() { FlagTime = "" }()

	if _, err := buildJob(path); util.ErrCode(err) != util.ErrorCmdArg {
		t.Fatalf("error = %v, want command-line argument error", err)
	}
}

func TestRunModify(t *testing.T) {
	testCases := []struct {
		name    string
		exprs   []string
		stored  string
		wantErr bool
	}{
		{"name change allowed", []string{`name="new name"`}, "labgrp", false},
		{"same account allowed", []string{"account=labgrp"}, "labgrp", false},
		{"account change rejected", []string{"account=other"}, "labgrp", true},
		{"unsupported field", []string{"nodes=4"}, "labgrp", true},
		{"malformed expression", []string{"account"}, "labgrp", true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			FlagStoredAccount = tc.stored
			defer func() { FlagStoredAccount = "" }()

			var out bytes.Buffer
			err := RunModify(tc.exprs, &out)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out.String(), "allowed") {
				t.Errorf("output = %q, want allowed verdict", out.String())
			}
		})
	}
}

func TestReportJson(t *testing.T) {
	job := api.NewJobDescriptor()
	job.Account = "labgrp"
	job.Partition = "standard"
	job.TimeLimit = 90
	job.Environment = []string{"SLURM_NTASKS=4"}

	var out bytes.Buffer
	if err := reportJson(job, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := out.String()
	if got := gjson.Get(doc, "Account").String(); got != "labgrp" {
		t.Errorf("Account = %q, want labgrp", got)
	}
	if got := gjson.Get(doc, "TimeLimit").String(); got != "1:30:00" {
		t.Errorf("TimeLimit = %q, want 1:30:00", got)
	}
	if got := gjson.Get(doc, "Environment.0").String(); got != "SLURM_NTASKS=4" {
		t.Errorf("Environment[0] = %q", got)
	}
	if gjson.Get(doc, "NumTasks").Exists() {
		t.Errorf("sentinel field NumTasks present in output")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := fmtMemory(2048 | api.MemPerCPU); got != "2048M/cpu" {
		t.Errorf("fmtMemory per-cpu = %q", got)
	}
	if got := fmtMemory(4096); got != "4096M/node" {
		t.Errorf("fmtMemory per-node = %q", got)
	}
	if got := fmtMinutes(90); got != "1:30:00" {
		t.Errorf("fmtMinutes = %q", got)
	}
	if got := fmtMailType(api.MailBegin | api.MailFail); got != "BEGIN,FAIL" {
		t.Errorf("fmtMailType = %q", got)
	}
	if got := fmtShared(api.SharedExclusive); got != "exclusive" {
		t.Errorf("fmtShared = %q", got)
	}
}

func TestFieldRowsElidesSentinels(t *testing.T) {
	job := api.NewJobDescriptor()
	job.Account = "labgrp"
	job.TimeLimit = 90

	var set []string
	for _, row := range fieldRows(job) {
		if row.set {
			set = append(set, row.name)
		}
	}
	want := []string{"Account", "TimeLimit"}
	if len(set) != len(want) || set[0] != want[0] || set[1] != want[1] {
		t.Fatalf("set fields = %v, want %v", set, want)
	}
}
