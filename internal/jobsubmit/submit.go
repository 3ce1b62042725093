package jobsubmit

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/gridengine"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// Submit normalizes one submitted job in place: GridEngine directives in
// the script's leading comment block are translated first, then the site
// policy rules run in their fixed order. The first fatal error aborts the
// submission; fields mutated before the failure are not rolled back.
func (p *Pipeline) Submit(job *api.JobDescriptor, submitUID uint32) error {
	if job.Script != "" && job.Script[0] == '#' {
		if err := gridengine.ParseScript(job, p.cfg.MinMemPerCpuMB); err != nil {
			log.Infof("GridEngine directive parsing failed: %s", err)
			return err
		}
	}
	if err := p.applyPolicy(job, submitUID); err != nil {
		log.Infof("Submission rejected: %s", err)
		return err
	}
	return nil
}

// Modify guards a modification request against an already-admitted job:
// the derived account is immutable post-submission.
func (p *Pipeline) Modify(incoming, stored *api.JobDescriptor, submitUID uint32) error {
	if incoming.Account != "" &&
		(stored.Account == "" || !strings.EqualFold(incoming.Account, stored.Account)) {
		log.Info("Job account cannot be modified after submission")
		return util.NewSubmitErr(util.ErrorPolicyViolation,
			"Job account cannot be modified after submission")
	}
	return nil
}
