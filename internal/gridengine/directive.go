package gridengine

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
)

const (
	commentMarker       = '#'
	directiveIntroducer = '$'
	flagIntroducer      = '-'
)

// parseState carries per-call scratch across the directive lines of one
// script. Everything here is released when ParseScript returns; only
// fields attached to the job descriptor survive.
type parseState struct {
	job      *api.JobDescriptor
	minMemMB uint64

	joinSet        bool
	join           bool
	stderrExplicit bool
}

// ParseScript walks the leading run of comment lines in the job script,
// reinterpreting `#$` GridEngine directive lines into job descriptor
// fields. Fields already set by an earlier-precedence source are left
// untouched. Scanning stops at the first non-comment line; minMemMB is
// the site floor applied to parsed memory quantities.
func ParseScript(job *api.JobDescriptor, minMemMB uint64) error {
	st := &parseState{job: job, minMemMB: minMemMB}
	st.stderrExplicit = job.StdErr != ""

	script := job.Script
	lineNo := 0
	for pos := 0; pos < len(script); {
		end := strings.IndexByte(script[pos:], '\n')
		if end < 0 {
			end = len(script)
		} else {
			end += pos
		}
		text := script[pos:end]
		pos = end + 1
		lineNo++

		if len(text) == 0 || text[0] != commentMarker {
			break
		}
		if len(text) < 2 || text[1] != directiveIntroducer {
			// an ordinary comment (or the shebang); counted but ignored
			continue
		}
		if err := st.dispatchLine(text[2:], lineNo); err != nil {
			return err
		}
	}

	st.deriveStderr()
	return nil
}

// dispatchLine handles the body of one `#$` line. GridEngine scripts may
// carry directives this parser does not implement; those are silently
// ignored rather than failing the job.
func (st *parseState) dispatchLine(body string, line int) error {
	body = strings.TrimLeft(body, " \t")
	if body == "" || body[0] != flagIntroducer {
		return nil
	}
	body = body[1:]

	nameEnd := 0
	for nameEnd < len(body) && body[nameEnd] != ' ' && body[nameEnd] != '\t' {
		nameEnd++
	}
	flag := body[:nameEnd]
	arg := strings.TrimLeft(body[nameEnd:], " \t")
	arg = strings.TrimRight(arg, " \t\r")

	switch flag {
	case "pe":
		return st.applyParallelEnv(arg, line)
	case "m":
		return st.applyMailMode(firstField(arg), line)
	case "M":
		if st.job.MailUser == "" {
			st.job.MailUser = firstField(arg)
		}
	case "N":
		st.applyJobName(arg)
	case "o":
		st.applyStdioPath(&st.job.StdOut, firstField(arg))
	case "e":
		if st.applyStdioPath(&st.job.StdErr, firstField(arg)) {
			st.stderrExplicit = true
		}
	case "i":
		st.applyStdioPath(&st.job.StdIn, firstField(arg))
	case "j":
		return st.applyJoinMode(firstField(arg), line)
	case "q":
		st.applyQueueList(firstField(arg))
	case "l":
		return applyResourceList(st.job, arg, line, st.minMemMB)
	default:
		log.Tracef("gridengine: line %d: ignoring directive -%s", line, flag)
	}
	return nil
}

// deriveStderr runs after all directive lines: when the script asked for
// unjoined streams and never named a stderr path, one is derived from
// stdout, or from the scheduler's per-job template.
func (st *parseState) deriveStderr() {
	if !st.joinSet || st.join || st.stderrExplicit || st.job.StdErr != "" {
		return
	}
	switch {
	case st.job.StdOut != "":
		if out, found := strings.CutSuffix(st.job.StdOut, ".out"); found {
			st.job.StdErr = out + ".err"
		} else {
			st.job.StdErr = st.job.StdOut + ".err"
		}
	default:
		st.job.StdErr = "slurm-%j.err"
	}
}

func firstField(s string) string {
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i]
	}
	return s
}
