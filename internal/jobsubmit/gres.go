package jobsubmit

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

// CountGpus sums the GPU counts requested in a generic-resource spec,
// recognizing the bare `gpu`, `gpu:<count>` and `gpu:<model>:<count>`
// forms. Non-GPU resources are not this policy's business and are left
// alone. A malformed count token is fatal.
func CountGpus(gresSpec string, knownModels []string) (uint64, error) {
	var total uint64
	for _, entry := range strings.Split(gresSpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if !strings.EqualFold(parts[0], "gpu") {
			continue
		}
		switch len(parts) {
		case 1:
			total++
		case 2:
			n, err := strconv.ParseUint(parts[1], 10, 32)
			if err != nil {
				return 0, util.NewSubmitErrf(util.ErrorMalformedDirective,
					"malformed GPU count in GRES entry %q", entry)
			}
			total += n
		case 3:
			if !modelKnown(parts[1], knownModels) {
				// Count it anyway: new hardware should not silently
				// lose binding enforcement.
				log.Infof("GRES entry %q names unrecognized GPU model %q", entry, parts[1])
			}
			n, err := strconv.ParseUint(parts[2], 10, 32)
			if err != nil {
				return 0, util.NewSubmitErrf(util.ErrorMalformedDirective,
					"malformed GPU count in GRES entry %q", entry)
			}
			total += n
		default:
			return 0, util.NewSubmitErrf(util.ErrorMalformedDirective,
				"malformed GRES entry %q", entry)
		}
	}
	return total, nil
}

func modelKnown(model string, knownModels []string) bool {
	for _, m := range knownModels {
		if strings.EqualFold(model, m) {
			return true
		}
	}
	return false
}
