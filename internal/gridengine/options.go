package gridengine

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// Slot counts must stay clear of the 16-bit sentinel, since the threads
// environment maps slots onto cpus-per-task.
const maxSlotCount = uint64(api.NoVal16) - 1

// geometryUnset is the compound precedence guard for -pe: the option
// applies only while every task/CPU/node geometry field is still at its
// sentinel. One field set by an explicit flag suppresses the whole
// option.
func geometryUnset(job *api.JobDescriptor) bool {
	return job.NumTasks == api.NoVal &&
		job.CpusPerTask == api.NoVal16 &&
		job.MinCpus == api.NoVal &&
		job.MaxCpus == api.NoVal &&
		job.MinNodes == api.NoVal &&
		job.MaxNodes == api.NoVal &&
		job.PnMinCpus == api.NoVal16
}

// applyParallelEnv handles `-pe <name> <count>[-<count>]`. The slot spec
// is scanned in at most two passes, min then max; a bare leading hyphen
// implies a range starting at 1.
func (st *parseState) applyParallelEnv(arg string, line int) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return util.NewDirectiveErr(line, "-pe requires an environment name and a slot count")
	}
	peName, slotSpec := fields[0], fields[1]

	minSlots, maxSlots, err := scanSlotRange(slotSpec, line)
	if err != nil {
		return err
	}

	job := st.job
	if !geometryUnset(job) {
		log.Tracef("gridengine: line %d: -pe ignored, job geometry already specified", line)
		return nil
	}

	switch peName {
	case "threads":
		job.NumTasks = 1
		job.CpusPerTask = uint16(maxSlots)
	case "mpi", "generic-mpi":
		job.NumTasks = uint32(maxSlots)
		job.CpusPerTask = 1
	default:
		return util.NewDirectiveErr(line, "unknown parallel environment %q", peName)
	}
	job.MinCpus = uint32(minSlots)
	job.MaxCpus = uint32(maxSlots)

	// Export the computed values for downstream consumers in the job.
	ntasks := strconv.FormatUint(uint64(job.NumTasks), 10)
	cpus := strconv.FormatUint(uint64(job.CpusPerTask), 10)
	for _, kv := range []struct{ k, v string }{
		{"SLURM_NTASKS", ntasks},
		{"SLURM_NPROCS", ntasks},
		{"SLURM_CPUS_PER_TASK", cpus},
	} {
		if err := api.AppendEnv(&job.Environment, kv.k, kv.v); err != nil {
			return util.NewDirectiveErr(line, "cannot export %s: %s", kv.k, err)
		}
	}
	return nil
}

// scanSlotRange parses <count>, <count>-<count>, or -<count> (implied
// minimum of 1).
func scanSlotRange(spec string, line int) (minSlots, maxSlots uint64, err error) {
	s := spec
	which := 0 // 0 = scanning min, 1 = scanning max
	for which <= 1 {
		if which == 0 && len(s) > 0 && s[0] == '-' {
			// bare leading hyphen: implied range from 1
			minSlots = 1
			which = 1
			s = s[1:]
			continue
		}
		v, n, ok := scanUint(s)
		if !ok {
			return 0, 0, util.NewDirectiveErr(line, "malformed slot count %q", spec)
		}
		s = s[n:]
		if which == 0 {
			minSlots, maxSlots = v, v
			if len(s) > 0 && s[0] == '-' {
				which = 1
				s = s[1:]
				continue
			}
		} else {
			maxSlots = v
		}
		break
	}
	if s != "" {
		return 0, 0, util.NewDirectiveErr(line, "malformed slot count %q", spec)
	}
	if minSlots == 0 || maxSlots == 0 {
		return 0, 0, util.NewDirectiveErr(line, "slot count must be positive in %q", spec)
	}
	if minSlots > maxSlots {
		return 0, 0, util.NewDirectiveErr(line,
			"slot range minimum %d exceeds maximum %d", minSlots, maxSlots)
	}
	if maxSlots > maxSlotCount {
		return 0, 0, util.NewDirectiveErr(line, "slot count %d out of range", maxSlots)
	}
	return minSlots, maxSlots, nil
}

// applyMailMode handles `-m <chars>`; n clears what earlier characters
// in the same argument accumulated.
func (st *parseState) applyMailMode(arg string, line int) error {
	var bits uint16
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case 'b':
			bits |= api.MailBegin
		case 'e':
			bits |= api.MailEnd
		case 'a':
			bits |= api.MailFail
		case 's':
			bits |= api.MailRequeue
		case 'n':
			bits = 0
		default:
			return util.NewDirectiveErr(line, "invalid mail mode character %q", string(arg[i]))
		}
	}
	if st.job.MailType == 0 {
		st.job.MailType = bits
	}
	return nil
}

// Job name delimiters beyond whitespace.
const jobNameDelims = "/:@\\*?"

// applyJobName fills the job name, falling back to the comment field
// when a name is already present.
func (st *parseState) applyJobName(arg string) {
	name := firstField(arg)
	if i := strings.IndexAny(name, jobNameDelims); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return
	}
	switch {
	case st.job.Name == "":
		st.job.Name = name
	case name == st.job.Name:
		// restating the current name is not a comment
	case st.job.Comment == "":
		st.job.Comment = name
	}
}

// applyStdioPath translates one -o/-e/-i argument into a native path.
// Reports whether a usable path came out of the translator, even when
// precedence kept it from being stored.
func (st *parseState) applyStdioPath(field *string, arg string) bool {
	path, ok := TranslateStdioPath(arg)
	if !ok {
		log.Tracef("gridengine: discarding host-qualified stdio path %q", arg)
		return false
	}
	if *field == "" {
		*field = path
	}
	return true
}

// applyJoinMode handles `-j y[es]|n[o]`.
func (st *parseState) applyJoinMode(arg string, line int) error {
	switch strings.ToLower(arg) {
	case "y", "yes":
		st.joinSet, st.join = true, true
	case "n", "no":
		st.joinSet, st.join = true, false
	default:
		return util.NewDirectiveErr(line, "invalid -j argument %q", arg)
	}
	return nil
}

// applyQueueList handles `-q`: queue names become partition names, any
// @hostname qualifier has no scheduler equivalent and is dropped.
func (st *parseState) applyQueueList(arg string) {
	if st.job.Partition != "" {
		return
	}
	var names []string
	for _, spec := range strings.Split(arg, ",") {
		name, _, _ := strings.Cut(spec, "@")
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		st.job.Partition = strings.Join(names, ",")
	}
}
