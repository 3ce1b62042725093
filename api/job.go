// Package api defines the contract between the host scheduler and the
// UD add-on plugins: the borrowed job record the submission pipeline
// mutates, and the hook interface loadable plugins implement.
package api

import (
	"fmt"
	"strings"
)

// Unset sentinels, matching the scheduler's wire conventions. A field
// holding its sentinel is the only kind of field this pipeline may fill;
// values set by explicit submission flags are never overwritten.
const (
	NoVal   uint32 = 0xfffffffe
	NoVal16 uint16 = 0xfffe
	NoVal64 uint64 = 0xfffffffffffffffe

	// Flag bit on PnMinMemory: the quantity is MiB per allocated CPU
	// rather than per node.
	MemPerCPU uint64 = 0x8000000000000000
)

// Node-sharing tri-state.
const (
	SharedExclusive uint16 = 0 // whole-node
	SharedOK        uint16 = 1
	SharedUser      uint16 = 2 // exclusive to the submitting user
)

// Mail event bits.
const (
	MailBegin uint16 = 1 << iota
	MailEnd
	MailFail
	MailRequeue
)

// Socket-level CPU binding enforcement, set when a GPU request is present.
const CpuBindToSockets uint16 = 1 << 0

// JobDescriptor is the host scheduler's job record, borrowed mutably for
// the duration of one submission or modification call.
type JobDescriptor struct {
	Account     string
	Partition   string // comma-separated list
	Reservation string
	Qos         string
	Name        string
	Comment     string

	StdOut string
	StdErr string
	StdIn  string

	MailType uint16
	MailUser string

	NumTasks    uint32
	CpusPerTask uint16
	MinCpus     uint32
	MaxCpus     uint32
	MinNodes    uint32
	MaxNodes    uint32
	PnMinCpus   uint16

	// MiB, possibly carrying the MemPerCPU flag bit.
	PnMinMemory uint64

	// Minutes.
	TimeLimit uint32
	TimeMin   uint32

	Shared uint16

	// Generic resource spec, e.g. "gpu:2" or "gpu:a100:4,shm:1".
	GresSpec string

	CpuBindType    uint16
	SocketsPerNode uint16

	GroupID uint32
	Script  string

	// Ordered KEY=VALUE list; mutated only through AppendEnv during
	// this pipeline.
	Environment []string
}

// NewJobDescriptor returns a descriptor with every optional field at its
// documented sentinel, the state an untouched submission arrives in.
func NewJobDescriptor() *JobDescriptor {
	return &JobDescriptor{
		MailType:       0,
		NumTasks:       NoVal,
		CpusPerTask:    NoVal16,
		MinCpus:        NoVal,
		MaxCpus:        NoVal,
		MinNodes:       NoVal,
		MaxNodes:       NoVal,
		PnMinCpus:      NoVal16,
		PnMinMemory:    NoVal64,
		TimeLimit:      NoVal,
		TimeMin:        NoVal,
		Shared:         NoVal16,
		CpuBindType:    0,
		SocketsPerNode: NoVal16,
		GroupID:        NoVal,
	}
}

// AppendEnv mirrors a derived scheduling value into the job environment.
// The list only ever grows, but a key already present is overwritten in
// place rather than appended again, so re-deriving a value never
// duplicates its export. A malformed key is fatal to the submission.
func AppendEnv(list *[]string, key, value string) error {
	if key == "" || strings.ContainsRune(key, '=') {
		return fmt.Errorf("invalid environment variable name %q", key)
	}
	prefix := key + "="
	for i, kv := range *list {
		if strings.HasPrefix(kv, prefix) {
			(*list)[i] = prefix + value
			return nil
		}
	}
	*list = append(*list, prefix+value)
	return nil
}

// PartitionList splits the partition field, empty for the unset case.
func (j *JobDescriptor) PartitionList() []string {
	if j.Partition == "" {
		return nil
	}
	return strings.Split(j.Partition, ",")
}
