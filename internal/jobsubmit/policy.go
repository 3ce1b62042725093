package jobsubmit

import (
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/api"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/config"
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// Pipeline holds the loaded site configuration and the name-service
// collaborator. One Pipeline serves the whole hosting process; each
// Submit/Modify call borrows one job record under the host's locking.
type Pipeline struct {
	cfg      *config.Config
	resolver GroupResolver

	ownedResource *regexp.Regexp
}

func NewPipeline(cfg *config.Config, resolver GroupResolver) *Pipeline {
	return &Pipeline{
		cfg:           cfg,
		resolver:      resolver,
		ownedResource: compileOwnedResource(cfg.OwnedResourceTypes),
	}
}

// compileOwnedResource builds the matcher for <type>-<size><unit>
// partition names, e.g. compute-100gb.
func compileOwnedResource(types []string) *regexp.Regexp {
	if len(types) == 0 {
		return nil
	}
	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(fmt.Sprintf(`(?i)^(?:%s)-\d+[kmgt]i?b$`, strings.Join(quoted, "|")))
}

// applyPolicy runs the fixed, ordered rule sequence against an
// already-directive-parsed job record, short-circuiting on the first
// violation. Every mutation is guarded on the target field still holding
// its sentinel, so re-running the pipeline on a normalized record is a
// no-op.
func (p *Pipeline) applyPolicy(job *api.JobDescriptor, submitUID uint32) error {
	if err := p.checkReservedPartition(job); err != nil {
		return err
	}
	if err := p.checkSharing(job); err != nil {
		return err
	}

	if job.PnMinMemory == api.NoVal64 {
		job.PnMinMemory = p.cfg.DefaultMemPerCpuMB | api.MemPerCPU
		log.Tracef("Applying default memory of %d MiB per CPU", p.cfg.DefaultMemPerCpuMB)
	}

	if err := p.deriveAccount(job, submitUID); err != nil {
		return err
	}
	p.applyOwnedResourceQos(job)
	p.applyPriorityQos(job)
	if err := p.substituteWorkgroup(job); err != nil {
		return err
	}
	if err := p.adjustGpuBinding(job); err != nil {
		return err
	}

	if job.TimeMin == api.NoVal && job.TimeLimit != api.NoVal {
		job.TimeMin = job.TimeLimit
	}
	return nil
}

func (p *Pipeline) checkReservedPartition(job *api.JobDescriptor) error {
	if !p.cfg.Rules.ReservedCheck || job.Reservation != "" {
		return nil
	}
	for _, part := range job.PartitionList() {
		if part == p.cfg.ReservedPartition {
			return util.NewSubmitErrf(util.ErrorPolicyViolation,
				"Jobs submitted to the %s partition must include a reservation",
				p.cfg.ReservedPartition)
		}
	}
	return nil
}

func (p *Pipeline) checkSharing(job *api.JobDescriptor) error {
	switch job.Shared {
	case api.NoVal16:
	case api.SharedUser:
		if p.cfg.Rules.RejectUserExclusive {
			return util.NewSubmitErr(util.ErrorPolicyViolation,
				"User-exclusive node access is not available on this cluster; "+
					"request exclusive access or allow sharing")
		}
		log.Tracef("Job requests user-exclusive node access")
	default:
		log.Tracef("Job node-sharing mode: %d", job.Shared)
	}
	return nil
}

// deriveAccount sets the job account from the submitting group, the core
// UD workgroup convention: gids at or above the configured base name a
// workgroup; anything below is not submittable except by root.
func (p *Pipeline) deriveAccount(job *api.JobDescriptor, submitUID uint32) error {
	if job.Account != "" {
		return nil
	}
	if job.GroupID != api.NoVal && job.GroupID >= p.cfg.BaseGid {
		gname, err := p.resolver.LookupGroupName(job.GroupID)
		if err != nil {
			log.Infof("Unable to resolve job submission gid %d; job account not set", job.GroupID)
			return util.NewSubmitErrf(util.ErrorLookupFailure,
				"Unable to resolve job submission gid %d", job.GroupID)
		}
		job.Account = gname
		log.Infof("Setting job account to %s (%d)", gname, job.GroupID)
		return nil
	}
	if submitUID != 0 {
		return util.NewSubmitErr(util.ErrorPolicyViolation,
			"Please choose a workgroup before submitting a job")
	}
	return nil
}

func (p *Pipeline) applyOwnedResourceQos(job *api.JobDescriptor) {
	if !p.cfg.Rules.OwnedResourceQos || p.ownedResource == nil {
		return
	}
	if job.Qos != "" || job.Account == "" {
		return
	}
	for _, part := range job.PartitionList() {
		if p.ownedResource.MatchString(part) {
			job.Qos = job.Account
			log.Tracef("Owned-resource partition %s: QOS set to account %s", part, job.Account)
			return
		}
	}
}

func (p *Pipeline) applyPriorityQos(job *api.JobDescriptor) {
	if !p.cfg.Rules.PriorityQos || job.Qos != "" {
		return
	}
	parts := job.PartitionList()
	if len(parts) == 0 {
		return
	}
	for _, part := range parts {
		if part == p.cfg.WorkgroupToken {
			continue
		}
		if !p.resolver.GroupExists(part) {
			return
		}
	}
	job.Qos = p.cfg.PriorityAccessQos
	log.Tracef("All partitions workgroup-backed: QOS set to %s", p.cfg.PriorityAccessQos)
}

func (p *Pipeline) substituteWorkgroup(job *api.JobDescriptor) error {
	if !p.cfg.Rules.WorkgroupSubst {
		return nil
	}
	parts := job.PartitionList()
	token := p.cfg.WorkgroupToken
	found := false
	for _, part := range parts {
		if part == token {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	gname, err := p.resolver.LookupGroupName(job.GroupID)
	if err != nil {
		return util.NewSubmitErrf(util.ErrorPolicyViolation,
			"Cannot substitute %s: unable to resolve submission gid %d", token, job.GroupID)
	}
	for i, part := range parts {
		if part == token {
			parts[i] = gname
		}
	}
	job.Partition = strings.Join(parts, ",")
	log.Tracef("Workgroup partition token resolved to %s", gname)
	return nil
}

func (p *Pipeline) adjustGpuBinding(job *api.JobDescriptor) error {
	if !p.cfg.Rules.GresAdjust || job.GresSpec == "" {
		return nil
	}
	count, err := CountGpus(job.GresSpec, p.cfg.GpuModels)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if count >= uint64(api.NoVal16) {
		return util.NewSubmitErrf(util.ErrorMalformedDirective,
			"GPU count %d out of range", count)
	}
	job.CpuBindType |= api.CpuBindToSockets
	if job.SocketsPerNode == api.NoVal16 {
		job.SocketsPerNode = uint16(count)
	}
	log.Tracef("GPU request of %d: socket binding enforced", count)
	return nil
}
