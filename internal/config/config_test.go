package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MinMemPerCpuMB != 1024 || cfg.DefaultMemPerCpuMB != 1024 {
		t.Errorf("memory defaults = %d/%d, want 1024/1024",
			cfg.MinMemPerCpuMB, cfg.DefaultMemPerCpuMB)
	}
	if cfg.BaseGid != 1001 {
		t.Errorf("BaseGid = %d, want 1001", cfg.BaseGid)
	}
	if cfg.WorkgroupToken != "_workgroup_" {
		t.Errorf("WorkgroupToken = %q", cfg.WorkgroupToken)
	}
	if cfg.PriorityAccessQos != "priority-access" {
		t.Errorf("PriorityAccessQos = %q", cfg.PriorityAccessQos)
	}
	if !cfg.Rules.ReservedCheck || !cfg.Rules.GresAdjust {
		t.Errorf("rules not defaulted on: %+v", cfg.Rules)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
min_mem_per_cpu_mb: 2048
base_gid: 5000
reserved_partition: hold
owned_resource_types:
  - fpga
rules:
  reject_user_exclusive: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MinMemPerCpuMB != 2048 {
		t.Errorf("MinMemPerCpuMB = %d, want 2048", cfg.MinMemPerCpuMB)
	}
	if cfg.BaseGid != 5000 {
		t.Errorf("BaseGid = %d, want 5000", cfg.BaseGid)
	}
	if cfg.ReservedPartition != "hold" {
		t.Errorf("ReservedPartition = %q, want hold", cfg.ReservedPartition)
	}
	if len(cfg.OwnedResourceTypes) != 1 || cfg.OwnedResourceTypes[0] != "fpga" {
		t.Errorf("OwnedResourceTypes = %v, want [fpga]", cfg.OwnedResourceTypes)
	}
	if cfg.Rules.RejectUserExclusive {
		t.Errorf("rules.reject_user_exclusive not overridden")
	}
	// untouched keys keep their defaults
	if cfg.DefaultMemPerCpuMB != 1024 {
		t.Errorf("DefaultMemPerCpuMB = %d, want default 1024", cfg.DefaultMemPerCpuMB)
	}
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"zero memory floor", "min_mem_per_cpu_mb: 0\n"},
		{"zero default memory", "default_mem_per_cpu_mb: 0\n"},
		{"empty workgroup token", "workgroup_token: \"\"\n"},
		{"priority rule without qos", "priority_access_qos: \"\"\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "policy.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}
