package udcheck

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tidwall/sjson"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/config"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/gridengine"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/jobsubmit"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/parser"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

func loadPipeline() (*jobsubmit.Pipeline, error) {
	cfg, err := config.Load(FlagConfigFilePath)
	if err != nil {
		return nil, util.WrapSubmitErr(util.ErrorConfig, "failed to load policy configuration", err)
	}
	return jobsubmit.NewPipeline(cfg, jobsubmit.NewOSGroupResolver()), nil
}

// buildJob assembles the descriptor an explicit submission would hand the
// plugin: sentinel everywhere, then command-line values layered on top.
func buildJob(scriptPath string) (*api.JobDescriptor, error) {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, util.WrapSubmitErr(util.ErrorScriptRead, "failed to read script", err)
	}

	job := api.NewJobDescriptor()
	job.Script = string(script)
	job.GroupID = FlagGid
	job.Account = FlagAccount
	job.Partition = FlagPartition
	job.Qos = FlagQos
	job.Reservation = FlagReservation
	job.Name = FlagJobName
	job.StdOut = FlagStdoutPath
	job.StdErr = FlagStderrPath
	job.GresSpec = FlagGres
	if FlagTime != "" {
		minutes, consumed, ok := gridengine.ScanTimeMinutes(FlagTime)
		if !ok || consumed != len(FlagTime) {
			return nil, util.NewSubmitErrf(util.ErrorCmdArg,
				"invalid time limit %q", FlagTime)
		}
		job.TimeLimit = minutes
	}
	if FlagMemPerCpu > 0 {
		job.PnMinMemory = FlagMemPerCpu | api.MemPerCPU
	}
	if FlagNTasks > 0 {
		job.NumTasks = FlagNTasks
	}
	if FlagCpusPerTask > 0 {
		job.CpusPerTask = FlagCpusPerTask
	}
	return job, nil
}

// RunCheck dry-runs one script through the submission pipeline and
// reports the normalized job record.
func RunCheck(scriptPath string, out io.Writer) error {
	pipeline, err := loadPipeline()
	if err != nil {
		return err
	}
	job, err := buildJob(scriptPath)
	if err != nil {
		return err
	}

	if err := pipeline.Submit(job, FlagUid); err != nil {
		fmt.Fprintf(out, "Submission would be rejected: %s\n", err)
		return err
	}

	if FlagJson {
		return reportJson(job, out)
	}
	reportTable(job, out)
	return nil
}

// RunModify evaluates key=value modification expressions against a
// stored job record and reports the guard's verdict.
func RunModify(exprs []string, out io.Writer) error {
	pipeline, err := loadPipeline()
	if err != nil {
		return err
	}

	update, err := parser.Parse(strings.Join(exprs, " "))
	if err != nil {
		return util.NewSubmitErrf(util.ErrorCmdArg, "invalid expression: %s", err)
	}

	incoming := api.NewJobDescriptor()
	for _, op := range update.Ops {
		switch strings.ToLower(op.Key) {
		case "account":
			incoming.Account = op.Text()
		case "name", "jobname":
			incoming.Name = op.Text()
		case "comment":
			incoming.Comment = op.Text()
		case "qos":
			incoming.Qos = op.Text()
		case "partition":
			incoming.Partition = op.Text()
		default:
			return util.NewSubmitErrf(util.ErrorCmdArg,
				"unsupported modification field %q", op.Key)
		}
	}

	stored := api.NewJobDescriptor()
	stored.Account = FlagStoredAccount

	if err := pipeline.Modify(incoming, stored, FlagUid); err != nil {
		fmt.Fprintf(out, "Modification would be rejected: %s\n", err)
		return err
	}
	fmt.Fprintln(out, "Modification would be allowed.")
	return nil
}

type fieldRow struct {
	name  string
	value string
	set   bool
}

// fieldRows flattens the descriptor into report rows; unset sentinel
// fields are carried but flagged so both renderers can elide them.
func fieldRows(job *api.JobDescriptor) []fieldRow {
	rows := []fieldRow{
		{"Account", job.Account, job.Account != ""},
		{"Partition", job.Partition, job.Partition != ""},
		{"Qos", job.Qos, job.Qos != ""},
		{"Reservation", job.Reservation, job.Reservation != ""},
		{"Name", job.Name, job.Name != ""},
		{"Comment", job.Comment, job.Comment != ""},
		{"StdOut", job.StdOut, job.StdOut != ""},
		{"StdErr", job.StdErr, job.StdErr != ""},
		{"StdIn", job.StdIn, job.StdIn != ""},
		{"MailType", fmtMailType(job.MailType), job.MailType != 0},
		{"NumTasks", fmt.Sprint(job.NumTasks), job.NumTasks != api.NoVal},
		{"CpusPerTask", fmt.Sprint(job.CpusPerTask), job.CpusPerTask != api.NoVal16},
		{"MinCpus", fmt.Sprint(job.MinCpus), job.MinCpus != api.NoVal},
		{"MaxCpus", fmt.Sprint(job.MaxCpus), job.MaxCpus != api.NoVal},
		{"Memory", fmtMemory(job.PnMinMemory), job.PnMinMemory != api.NoVal64},
		{"TimeLimit", fmtMinutes(job.TimeLimit), job.TimeLimit != api.NoVal},
		{"TimeMin", fmtMinutes(job.TimeMin), job.TimeMin != api.NoVal},
		{"Shared", fmtShared(job.Shared), job.Shared != api.NoVal16},
		{"Gres", job.GresSpec, job.GresSpec != ""},
		{"SocketsPerNode", fmt.Sprint(job.SocketsPerNode), job.SocketsPerNode != api.NoVal16},
	}
	for _, kv := range job.Environment {
		rows = append(rows, fieldRow{"Env", kv, true})
	}
	return rows
}

func reportTable(job *api.JobDescriptor, out io.Writer) {
	table := tablewriter.NewWriter(out)
	util.SetBorderlessTable(table)
	table.SetHeader([]string{"Field", "Value"})
	for _, row := range fieldRows(job) {
		if !row.set {
			continue
		}
		table.Append([]string{row.name, row.value})
	}
	table.Render()
}

func reportJson(job *api.JobDescriptor, out io.Writer) error {
	doc := "{}"
	var err error
	for _, row := range fieldRows(job) {
		if !row.set {
			continue
		}
		key := row.name
		if key == "Env" {
			key = "Environment.-1"
		}
		doc, err = sjson.Set(doc, key, row.value)
		if err != nil {
			return util.WrapSubmitErr(util.ErrorCmdArg, "failed to build JSON output", err)
		}
	}
	_, err = fmt.Fprintln(out, doc)
	return err
}

func fmtMemory(mem uint64) string {
	if mem == api.NoVal64 {
		return ""
	}
	if mem&api.MemPerCPU != 0 {
		return fmt.Sprintf("%dM/cpu", mem&^api.MemPerCPU)
	}
	return fmt.Sprintf("%dM/node", mem)
}

func fmtMinutes(min uint32) string {
	if min == api.NoVal {
		return ""
	}
	return fmt.Sprintf("%d:%02d:00", min/60, min%60)
}

func fmtShared(shared uint16) string {
	switch shared {
	case api.SharedExclusive:
		return "exclusive"
	case api.SharedOK:
		return "ok"
	case api.SharedUser:
		return "user"
	default:
		return fmt.Sprint(shared)
	}
}

func fmtMailType(mail uint16) string {
	var names []string
	if mail&api.MailBegin != 0 {
		names = append(names, "BEGIN")
	}
	if mail&api.MailEnd != 0 {
		names = append(names, "END")
	}
	if mail&api.MailFail != 0 {
		names = append(names, "FAIL")
	}
	if mail&api.MailRequeue != 0 {
		names = append(names, "REQUEUE")
	}
	return strings.Join(names, ",")
}
