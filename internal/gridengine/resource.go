package gridengine

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// resourceEntry is one name[=value] element of a -l list. quote records
// the delimiter when the value was quoted, 0 otherwise.
type resourceEntry struct {
	name  string
	value string
	quote byte
}

// Alias sets for the resource names this parser maps onto the job
// record. Matched case-insensitively as whole tokens.
var (
	memAliases  = []string{"m_mem_free", "mfree", "mem_free", "mf"}
	timeAliases = []string{"h_rt"}
	exclAliases = []string{"exclusive", "excl"}
)

func isAlias(name string, set []string) bool {
	for _, a := range set {
		if strings.EqualFold(name, a) {
			return true
		}
	}
	return false
}

// scanResourceList splits a -l argument into entries. A value opening
// with ' or " is terminated by that character instead of comma, with a
// backslash escaping the delimiter; running out of input inside a quoted
// value is fatal.
func scanResourceList(arg string, line int) ([]resourceEntry, error) {
	var entries []resourceEntry
	i := 0
	for i < len(arg) {
		// name, up to '=' or ','
		start := i
		for i < len(arg) && arg[i] != '=' && arg[i] != ',' {
			i++
		}
		entry := resourceEntry{name: strings.TrimSpace(arg[start:i])}

		if i < len(arg) && arg[i] == '=' {
			i++
			var b strings.Builder
			delim := byte(',')
			if i < len(arg) && (arg[i] == '"' || arg[i] == '\'') {
				entry.quote = arg[i]
				delim = arg[i]
				i++
			}
			closed := false
			for i < len(arg) {
				c := arg[i]
				if c == '\\' && i+1 < len(arg) && arg[i+1] == delim {
					b.WriteByte(delim)
					i += 2
					continue
				}
				if c == delim {
					i++
					closed = true
					break
				}
				b.WriteByte(c)
				i++
			}
			if entry.quote != 0 {
				if !closed {
					return nil, util.NewDirectiveErr(line,
						"unterminated %c-quoted value for resource %q", entry.quote, entry.name)
				}
				// quoted value is followed by the entry separator, if any
				if i < len(arg) && arg[i] == ',' {
					i++
				}
			}
			entry.value = b.String()
		} else if i < len(arg) && arg[i] == ',' {
			i++
		}

		if entry.name != "" || entry.value != "" {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// applyResourceList maps the recognized -l resources onto still-unset
// job fields. Scanner failure for a recognized name is fatal with line
// context; unrecognized names are GridEngine complex values with no
// scheduler equivalent and are skipped.
func applyResourceList(job *api.JobDescriptor, arg string, line int, minMemMB uint64) error {
	entries, err := scanResourceList(arg, line)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		switch {
		case isAlias(entry.name, memAliases):
			mb, consumed, ok := ScanMemoryMB(entry.value, minMemMB)
			if !ok || consumed != len(entry.value) {
				return util.NewDirectiveErr(line,
					"malformed memory value %q for resource %q", entry.value, entry.name)
			}
			if job.PnMinMemory == api.NoVal64 {
				job.PnMinMemory = mb | api.MemPerCPU
				log.Tracef("gridengine: -l %s=%s => %d MiB per CPU", entry.name, entry.value, mb)
			}
		case isAlias(entry.name, timeAliases):
			minutes, consumed, ok := ScanTimeMinutes(entry.value)
			if !ok || consumed != len(entry.value) {
				return util.NewDirectiveErr(line,
					"malformed time value %q for resource %q", entry.value, entry.name)
			}
			if job.TimeLimit == api.NoVal {
				job.TimeLimit = minutes
				log.Tracef("gridengine: -l h_rt=%s => %d minutes", entry.value, minutes)
			}
		case isAlias(entry.name, exclAliases):
			val := true
			if entry.value != "" {
				var ok bool
				val, ok = ScanBool(entry.value)
				if !ok {
					return util.NewDirectiveErr(line,
						"malformed boolean value %q for resource %q", entry.value, entry.name)
				}
			}
			if job.Shared == api.NoVal16 {
				if val {
					job.Shared = api.SharedExclusive
				} else {
					job.Shared = api.SharedOK
				}
			}
		default:
			log.Tracef("gridengine: ignoring unrecognized resource %q", entry.name)
		}
	}
	return nil
}
