// Package sgeenv derives the GridEngine per-job environment variables
// from their scheduler-native equivalents, for jobs submitted by users
// whose workflows still read SGE names. The functions are pure; pushing
// the values into a task environment is the launch plugin's job.
package sgeenv

import (
	"fmt"
	"strconv"
	"strings"
)

// Mirror computes the SGE-style variable set from a job environment.
// getenv returns "" for unset names. Only derivable variables appear in
// the result.
func Mirror(getenv func(string) string) map[string]string {
	out := make(map[string]string)

	if v := getenv("SLURM_SUBMIT_DIR"); v != "" {
		out["SGE_O_WORKDIR"] = v
	}

	// Array tasks report the array master id as JOB_ID.
	if v := getenv("SLURM_ARRAY_JOB_ID"); v != "" {
		out["JOB_ID"] = v
	} else if v := getenv("SLURM_JOB_ID"); v != "" {
		out["JOB_ID"] = v
	}

	if v := getenv("SLURM_JOB_NAME"); v != "" {
		out["JOB_NAME"] = v
	}

	if v := getenv("SLURM_JOB_NUM_NODES"); v != "" {
		out["NHOSTS"] = v
	} else {
		out["NHOSTS"] = "1"
	}

	if v := getenv("SLURM_JOB_CPUS_PER_NODE"); v != "" {
		if nslots, err := EvalCpusPerNode(v); err == nil && nslots > 0 {
			out["NSLOTS"] = strconv.FormatUint(nslots, 10)
		}
	}

	if v := getenv("SLURM_ARRAY_TASK_ID"); v != "" {
		out["TASK_ID"] = v
	}
	if v := getenv("SLURM_ARRAY_TASK_MIN"); v != "" {
		out["SGE_TASK_FIRST"] = v
	}
	if v := getenv("SLURM_ARRAY_TASK_MAX"); v != "" {
		out["SGE_TASK_LAST"] = v
	}
	if v := getenv("SLURM_ARRAY_TASK_STEP"); v != "" {
		out["SGE_TASK_STEPSIZE"] = v
	}

	return out
}

// EvalCpusPerNode evaluates and sums a SLURM_JOB_CPUS_PER_NODE value, a
// comma-delimited list of CPU counts with optional repeat factors:
//
//	1(x2),2(x3) == 1,1,2,2,2 == 8
func EvalCpusPerNode(spec string) (uint64, error) {
	var total uint64
	rest := spec
	for rest != "" {
		entry, tail, _ := strings.Cut(rest, ",")
		rest = tail

		count := entry
		repeat := uint64(1)
		if open := strings.IndexByte(entry, '('); open >= 0 {
			count = entry[:open]
			factor := entry[open:]
			if !strings.HasPrefix(factor, "(x") || !strings.HasSuffix(factor, ")") {
				return 0, fmt.Errorf("malformed repeat factor in %q", entry)
			}
			r, err := strconv.ParseUint(factor[2:len(factor)-1], 10, 32)
			if err != nil || r == 0 {
				return 0, fmt.Errorf("malformed repeat factor in %q", entry)
			}
			repeat = r
		}
		n, err := strconv.ParseUint(count, 10, 32)
		if err != nil || n == 0 {
			return 0, fmt.Errorf("malformed CPU count in %q", entry)
		}
		total += n * repeat
	}
	if total == 0 {
		return 0, fmt.Errorf("empty CPU list %q", spec)
	}
	return total, nil
}

// TmpDirPath builds the per-job TMPDIR: base/jobid for the batch script
// step, base/jobid.stepid for everything else. base defaults to /tmp.
func TmpDirPath(base string, jobID, stepID uint32, batchStep bool) string {
	if base == "" {
		base = "/tmp"
	}
	if batchStep {
		return fmt.Sprintf("%s/%d", base, jobID)
	}
	return fmt.Sprintf("%s/%d.%d", base, jobID, stepID)
}
